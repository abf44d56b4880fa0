package dbtest

import (
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Named builds the UK and EN translation pair used by taxonomy fixtures
func Named(uk, en string) []database.NamedTranslation {
	return []database.NamedTranslation{
		{Language: types.LanguageUK, Name: uk, Description: uk + " опис"},
		{Language: types.LanguageEN, Name: en, Description: en + " description"},
	}
}

// Movie creates a movie with both translations
func Movie(t testing.TB, db *gorm.DB, key, titleUK, titleEN string, release time.Time) *database.Movie {
	t.Helper()
	m := &database.Movie{
		Key:             key,
		ReleaseDate:     release,
		Duration:        120,
		RatingCriterion: types.CriterionBasic,
		Translations: []database.MovieTranslation{
			{Language: types.LanguageUK, Title: titleUK, Description: titleUK + " опис", Location: "США"},
			{Language: types.LanguageEN, Title: titleEN, Description: titleEN + " description", Location: "USA"},
		},
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func Genre(t testing.TB, db *gorm.DB, key, uk, en string) *database.Genre {
	t.Helper()
	g := &database.Genre{Key: key}
	for _, n := range Named(uk, en) {
		g.Translations = append(g.Translations, database.GenreTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(g).Error)
	return g
}

func Subgenre(t testing.TB, db *gorm.DB, parent *database.Genre, key, uk, en string) *database.Subgenre {
	t.Helper()
	s := &database.Subgenre{Key: key, ParentGenreID: parent.ID}
	for _, n := range Named(uk, en) {
		s.Translations = append(s.Translations, database.SubgenreTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func Specification(t testing.TB, db *gorm.DB, key, uk, en string) *database.Specification {
	t.Helper()
	s := &database.Specification{Key: key}
	for _, n := range Named(uk, en) {
		s.Translations = append(s.Translations, database.SpecificationTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func Keyword(t testing.TB, db *gorm.DB, key, uk, en string) *database.Keyword {
	t.Helper()
	k := &database.Keyword{Key: key}
	for _, n := range Named(uk, en) {
		k.Translations = append(k.Translations, database.KeywordTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(k).Error)
	return k
}

func ActionTime(t testing.TB, db *gorm.DB, key, uk, en string) *database.ActionTime {
	t.Helper()
	a := &database.ActionTime{Key: key}
	for _, n := range Named(uk, en) {
		a.Translations = append(a.Translations, database.ActionTimeTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func SharedUniverse(t testing.TB, db *gorm.DB, key, uk, en string) *database.SharedUniverse {
	t.Helper()
	s := &database.SharedUniverse{Key: key}
	for _, n := range Named(uk, en) {
		s.Translations = append(s.Translations, database.SharedUniverseTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func Character(t testing.TB, db *gorm.DB, key, uk, en string) *database.Character {
	t.Helper()
	c := &database.Character{Key: key}
	for _, n := range Named(uk, en) {
		c.Translations = append(c.Translations, database.CharacterTranslation{NamedTranslation: n})
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Actor creates an actor named first/last in both languages
func Actor(t testing.TB, db *gorm.DB, key, first, last string) *database.Actor {
	t.Helper()
	a := &database.Actor{Key: key, Born: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, lang := range types.Languages {
		a.Translations = append(a.Translations, database.ActorTranslation{PersonTranslation: database.PersonTranslation{
			Language: lang, FirstName: first, LastName: last, BornIn: "Kyiv",
		}})
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func Director(t testing.TB, db *gorm.DB, key, first, last string) *database.Director {
	t.Helper()
	d := &database.Director{Key: key, Born: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, lang := range types.Languages {
		d.Translations = append(d.Translations, database.DirectorTranslation{PersonTranslation: database.PersonTranslation{
			Language: lang, FirstName: first, LastName: last, BornIn: "Lviv",
		}})
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

// User creates an active user with the given role
func User(t testing.TB, db *gorm.DB, firstName string, role types.UserRole) *database.User {
	t.Helper()
	u := &database.User{FirstName: firstName, Email: firstName + "@example.com", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Category creates a visual profile category with the given criteria keys
func Category(t testing.TB, db *gorm.DB, key string, criteria ...string) *database.VisualProfileCategory {
	t.Helper()
	c := &database.VisualProfileCategory{Key: key}
	for _, n := range Named(key+" uk", key+" en") {
		c.Translations = append(c.Translations, database.VisualProfileCategoryTranslation{NamedTranslation: n})
	}
	for _, ck := range criteria {
		cr := database.VisualProfileCriterion{Key: ck}
		for _, n := range Named(ck+" uk", ck+" en") {
			cr.Translations = append(cr.Translations, database.VisualProfileCriterionTranslation{NamedTranslation: n})
		}
		c.Criteria = append(c.Criteria, cr)
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Link stores a percentage match row such as database.MovieGenre
func Link(t testing.TB, db *gorm.DB, row interface{}) {
	t.Helper()
	require.NoError(t, db.Create(row).Error)
}

// Rate stores a rating of user for movie
func Rate(t testing.TB, db *gorm.DB, movie *database.Movie, user *database.User, rating float64) *database.Rating {
	t.Helper()
	r := &database.Rating{MovieID: movie.ID, UserID: user.ID, Rating: rating, Acting: rating, Music: rating}
	require.NoError(t, db.Create(r).Error)
	return r
}
