package filters

import (
	"context"
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestExtractWord(t *testing.T) {
	got := ExtractWord([]string{"horror(10,100)", " drama (0,50)", "comedy", "  sci-fi  "})
	assert.Equal(t, []string{"horror", "drama", "comedy", "sci-fi"}, got)
}

func TestExtractValues(t *testing.T) {
	got := ExtractValues([]string{"horror(10,100)", "comedy", "thriller(5)"})
	assert.Equal(t, [][]int{{10, 100}, {5}}, got)
	assert.Empty(t, ExtractValues([]string{"plain"}))
}

func TestParseRanges(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []Range
	}{
		{
			name:   "ranged entries",
			values: []string{"horror(10,90)", "drama(0,50)"},
			want:   []Range{{Key: "horror", Min: 10, Max: 90}, {Key: "drama", Min: 0, Max: 50}},
		},
		{
			name:   "unranged key takes the next range",
			values: []string{"drama", "horror(10,90)"},
			want:   []Range{{Key: "drama", Min: 10, Max: 90}},
		},
		{
			name:   "single number is skipped",
			values: []string{"thriller(40)", "horror(10,90)"},
			want:   []Range{{Key: "horror", Min: 10, Max: 90}},
		},
		{
			name:   "no ranges",
			values: []string{"drama", "comedy"},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRanges(tt.values))
		})
	}
}

func TestCombine(t *testing.T) {
	a := Condition{SQL: "a = ?", Args: []interface{}{1}}
	b := Condition{SQL: "b = ?", Args: []interface{}{2}}

	assert.True(t, Or().Empty())
	assert.Equal(t, a, And(Condition{}, a))

	both := And(a, b)
	assert.Equal(t, "(a = ?) AND (b = ?)", both.SQL)
	assert.Equal(t, []interface{}{1, 2}, both.Args)

	nested := Or(both, Condition{SQL: "c"})
	assert.Equal(t, "((a = ?) AND (b = ?)) OR (c)", nested.SQL)
}

type fixture struct {
	db                   *gorm.DB
	alien, thing, amelie *database.Movie
}

// alien: horror 90, sci-fi 60, actor weaver, category dark
// thing: horror 70, actor russell, universe carpenter
// amelie: comedy 80, romance subgenre 50
func seed(t *testing.T) fixture {
	db := dbtest.New(t)
	date := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

	f := fixture{
		db:     db,
		alien:  dbtest.Movie(t, db, "alien", "Чужий", "Alien", date),
		thing:  dbtest.Movie(t, db, "the-thing", "Щось", "The Thing", date),
		amelie: dbtest.Movie(t, db, "amelie", "Амелі", "Amelie", date),
	}

	horror := dbtest.Genre(t, db, "horror", "Жахи", "Horror")
	scifi := dbtest.Genre(t, db, "sci-fi", "Фантастика", "Sci-Fi")
	comedy := dbtest.Genre(t, db, "comedy", "Комедія", "Comedy")
	romance := dbtest.Subgenre(t, db, comedy, "romcom", "Ромком", "Romcom")

	dbtest.Link(t, db, &database.MovieGenre{MovieID: f.alien.ID, GenreID: horror.ID, PercentageMatch: 90})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: f.alien.ID, GenreID: scifi.ID, PercentageMatch: 60})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: f.thing.ID, GenreID: horror.ID, PercentageMatch: 70})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: f.amelie.ID, GenreID: comedy.ID, PercentageMatch: 80})
	dbtest.Link(t, db, &database.MovieSubgenre{MovieID: f.amelie.ID, SubgenreID: romance.ID, PercentageMatch: 50})

	weaver := dbtest.Actor(t, db, "sigourney-weaver", "Sigourney", "Weaver")
	russell := dbtest.Actor(t, db, "kurt-russell", "Kurt", "Russell")
	require.NoError(t, db.Model(f.alien).Association("Actors").Append(weaver))
	require.NoError(t, db.Model(f.thing).Association("Actors").Append(russell))

	carpenter := dbtest.SharedUniverse(t, db, "carpenter", "Карпентер", "Carpenter")
	require.NoError(t, db.Model(f.thing).Update("shared_universe_id", carpenter.ID).Error)

	owner := dbtest.User(t, db, "owner", "owner")
	dark := dbtest.Category(t, db, "dark", "contrast")
	require.NoError(t, db.Create(&database.VisualProfile{MovieID: f.alien.ID, UserID: owner.ID, CategoryID: dark.ID}).Error)

	return f
}

func (f fixture) keys(t *testing.T, p Params) []string {
	t.Helper()
	cond, err := Build(context.Background(), f.db, p)
	require.NoError(t, err)

	var keys []string
	require.NoError(t, cond.Apply(f.db.Model(&database.Movie{})).Order("movies.id").Pluck("key", &keys).Error)
	return keys
}

func TestBuildPercentageGroups(t *testing.T) {
	f := seed(t)

	assert.Equal(t, []string{"alien", "the-thing"}, f.keys(t, Params{Genres: []string{"horror(50,100)"}}))
	assert.Equal(t, []string{"alien"}, f.keys(t, Params{Genres: []string{"horror(80,100)"}}))
	assert.Empty(t, f.keys(t, Params{Genres: []string{"horror(0,10)"}}))

	// within a group entries are OR unless inner_exact_match
	either := Params{Genres: []string{"sci-fi(0,100)", "comedy(0,100)"}}
	assert.Equal(t, []string{"alien", "amelie"}, f.keys(t, either))
	either.InnerExactMatch = true
	assert.Empty(t, f.keys(t, either))

	both := Params{Genres: []string{"horror(0,100)", "sci-fi(0,100)"}, InnerExactMatch: true}
	assert.Equal(t, []string{"alien"}, f.keys(t, both))
}

func TestBuildAcrossGroups(t *testing.T) {
	f := seed(t)

	p := Params{
		Genres:    []string{"horror(0,100)"},
		Subgenres: []string{"romcom(40,60)"},
	}
	assert.Equal(t, []string{"alien", "the-thing", "amelie"}, f.keys(t, p))

	p.ExactMatch = true
	assert.Empty(t, f.keys(t, p))

	p = Params{Genres: []string{"horror(0,100)"}, Actors: []string{"kurt-russell"}, ExactMatch: true}
	assert.Equal(t, []string{"the-thing"}, f.keys(t, p))
}

func TestBuildKeyGroups(t *testing.T) {
	f := seed(t)

	assert.Equal(t, []string{"alien"}, f.keys(t, Params{Actors: []string{"sigourney-weaver"}}))
	assert.Equal(t, []string{"the-thing"}, f.keys(t, Params{SharedUniverses: []string{"carpenter"}}))
	assert.Equal(t, []string{"alien"}, f.keys(t, Params{VisualProfiles: []string{"dark", "missing"}}))
	assert.Empty(t, f.keys(t, Params{Directors: []string{"nobody"}}))
}

func TestBuildWithoutFiltersMatchesAll(t *testing.T) {
	f := seed(t)

	cond, err := Build(context.Background(), f.db, Params{Genres: []string{"drama"}})
	require.NoError(t, err)
	assert.True(t, cond.Empty())
	assert.Len(t, f.keys(t, Params{}), 3)
}
