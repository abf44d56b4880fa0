package sheetsmodule

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSheets serves fixed ranges
type fakeSheets struct {
	ranges map[string][][]interface{}
}

func (f *fakeSheets) Values(ctx context.Context, rng string) ([][]interface{}, error) {
	return f.ranges[rng], nil
}

func (f *fakeSheets) Append(ctx context.Context, rng string, rows [][]interface{}) error {
	f.ranges[rng] = append(f.ranges[rng], rows...)
	return nil
}

type mockSheets struct {
	mock.Mock
}

func (m *mockSheets) Values(ctx context.Context, rng string) ([][]interface{}, error) {
	args := m.Called(ctx, rng)
	return args.Get(0).([][]interface{}), args.Error(1)
}

func (m *mockSheets) Append(ctx context.Context, rng string, rows [][]interface{}) error {
	return m.Called(ctx, rng, rows).Error(0)
}

func newSheetsService(t *testing.T, ranges map[string][][]interface{}) (*Service, *fakeSheets, *gorm.DB, string) {
	t.Helper()
	db := dbtest.New(t)
	dir := t.TempDir()
	client := &fakeSheets{ranges: ranges}
	return NewService(db, client, dir), client, db, dir
}

var genresSheet = [][]interface{}{
	{"ID", "key", "name_uk", "name_en", "description_uk", "description_en", "ID-2"},
	{"1", "horror", "Жахи", "Horror", "", "", "1"},
	{"2", "sci-fi", "Фантастика", "Sci-Fi", "Про космос", "About space", "2"},
}

var moviesHeader = []interface{}{
	"ID", "key", "title_uk", "title_en", "description_uk", "description_en", "release_date",
	"duration", "budget", "domestic_gross", "worldwide_gross", "poster", "actors_ids", "directors_ids",
	"genres_ids_with_percentage_match", "subgenres_ids_with_percentage_match", "specifications",
	"keywords", "action_times", "location_uk", "location_en", "rating_criterion", "ID-2",
}

func alienRow() []interface{} {
	return []interface{}{
		"1", "alien", "Чужий", "Alien", "Екіпаж", "The crew", "25.05.1979",
		"117", "11000000", "78900000", "106285522", "1_alien.png", "1", "",
		"[{1: 70}, {2: 30}, {9: 5}]", "", "", "", "", "Космос", "Space", "scare_factor", "1",
	}
}

func TestExportGenresAndMovies(t *testing.T) {
	svc, _, db, dir := newSheetsService(t, map[string][][]interface{}{
		"Genres!A1:G": genresSheet,
		"Movies!A1:W": {moviesHeader, alienRow()},
	})
	ctx := context.Background()
	weaver := dbtest.Actor(t, db, "weaver", "Sigourney", "Weaver")
	require.Equal(t, uint(1), weaver.ID)

	res, err := svc.Export(ctx, EntityGenres)
	require.NoError(t, err)
	assert.Equal(t, Result{Entity: EntityGenres, Read: 2, Written: 2}, res)

	res, err = svc.Export(ctx, EntityMovies)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	var movie database.Movie
	require.NoError(t, db.Preload("Translations").Preload("Actors").Preload("GenreMatches").Where("key = ?", "alien").First(&movie).Error)
	assert.Equal(t, "Alien", movie.Translation(types.LanguageEN).Title)
	assert.Equal(t, "Космос", movie.Translation(types.LanguageUK).Location)
	assert.Equal(t, 117, movie.Duration)
	assert.Equal(t, types.CriterionScareFactor, movie.RatingCriterion)
	assert.Equal(t, time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC), movie.ReleaseDate.UTC())
	require.Len(t, movie.Actors, 1)
	assert.Equal(t, "weaver", movie.Actors[0].Key)
	// genre 9 does not exist and is dropped
	assert.Len(t, movie.GenreMatches, 2)

	b, err := os.ReadFile(filepath.Join(dir, "movies.json"))
	require.NoError(t, err)
	var dump map[string][]MovieRecord
	require.NoError(t, json.Unmarshal(b, &dump))
	require.Len(t, dump["movies"], 1)
	assert.Equal(t, []Match{{ID: 1, Percent: 70}, {ID: 2, Percent: 30}, {ID: 9, Percent: 5}}, dump["movies"][0].Genres)

	res, err = svc.Export(ctx, EntityMovies)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Read)
	assert.Equal(t, 0, res.Written)
}

func TestExportStopsOnMissingValue(t *testing.T) {
	row := alienRow()
	row[3] = ""
	svc, _, db, dir := newSheetsService(t, map[string][][]interface{}{
		"Movies!A1:W": {moviesHeader, alienRow(), row},
	})

	_, err := svc.Export(context.Background(), EntityMovies)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3, column title_en: value is missing")

	var n int64
	require.NoError(t, db.Model(&database.Movie{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.NoFileExists(t, filepath.Join(dir, "movies.json"))
}

func TestExportRatingsUpsert(t *testing.T) {
	header := []interface{}{
		"ID", "movie_id", "user_id", "acting", "plot_storyline", "script_dialogue", "music",
		"enjoyment", "production_design", "visual_effects", "scare_factor", "humor",
		"animation_cartoon", "rating", "comment",
	}
	rating := func(score string) []interface{} {
		return []interface{}{"1", "1", "1", "8", "7,5", "7", "9", "8", "8", "", "9,5", "", "", score, "classic"}
	}
	svc, client, db, _ := newSheetsService(t, map[string][][]interface{}{
		"Rating!A1:R": {header, rating("8,2"), {"2", "1", "42", "1", "1", "1", "1", "1", "1", "", "", "", "", "1", ""}},
	})
	ctx := context.Background()
	owner := dbtest.User(t, db, "Owner", types.RoleOwner)
	dbtest.Movie(t, db, "alien", "Чужий", "Alien", time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC))

	res, err := svc.Export(ctx, EntityRatings)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Read)
	assert.Equal(t, 1, res.Written)

	var stored database.Rating
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&stored).Error)
	assert.Equal(t, 8.2, stored.Rating)
	require.NotNil(t, stored.ScareFactor)
	assert.Equal(t, 9.5, *stored.ScareFactor)
	assert.Nil(t, stored.VisualEffects)

	var movie database.Movie
	require.NoError(t, db.First(&movie, 1).Error)
	assert.Equal(t, 8.2, movie.AverageRating)
	assert.Equal(t, 1, movie.RatingsCount)

	client.ranges["Rating!A1:R"][1] = rating("9")
	_, err = svc.Export(ctx, EntityRatings)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&database.Rating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.First(&movie, 1).Error)
	assert.Equal(t, 9.0, movie.AverageRating)
}

func TestExportFromJSON(t *testing.T) {
	db := dbtest.New(t)
	dir := t.TempDir()
	svc := NewService(db, nil, dir)
	ctx := context.Background()

	_, err := svc.ExportFromJSON(ctx, EntityActors, 0)
	require.Error(t, err)

	born := time.Date(1949, 10, 8, 0, 0, 0, 0, time.UTC)
	people := []PersonRecord{
		{ID: 1, Key: "weaver", FirstNameUK: "Сігурні", FirstNameEN: "Sigourney", LastNameEN: "Weaver", Born: born},
		{ID: 2, Key: "skerritt", FirstNameUK: "Том", FirstNameEN: "Tom", Born: born},
		{ID: 3, Key: "hurt", FirstNameUK: "Джон", FirstNameEN: "John", Born: born},
	}
	_, err = svc.dumps.save(EntityActors, people)
	require.NoError(t, err)

	res, err := svc.ExportFromJSON(ctx, EntityActors, 2)
	require.NoError(t, err)
	assert.Equal(t, Result{Entity: EntityActors, Read: 2, Written: 2}, res)

	var actor database.Actor
	require.NoError(t, db.Preload("Translations").Where("key = ?", "weaver").First(&actor).Error)
	assert.Equal(t, "Sigourney Weaver", actor.FullName(types.LanguageEN))
	assert.Equal(t, "Сігурні", actor.FullName(types.LanguageUK))

	res, err = svc.ExportFromJSON(ctx, EntityActors, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Read)
	assert.Equal(t, 1, res.Written)
}

func TestExportRequiresDependencies(t *testing.T) {
	svc, _, _, _ := newSheetsService(t, map[string][][]interface{}{
		"Characters!A1:G": {
			{"ID", "key", "name_uk", "name_en", "actors_ids", "movies_ids", "ID-2"},
			{"1", "ripley", "Ріплі", "Ripley", "1", "1", "1"},
		},
	})
	_, err := svc.Export(context.Background(), EntityCharacters)
	assert.ErrorIs(t, err, ErrEmptyDependency)
}

func TestExportCharactersLinksPairs(t *testing.T) {
	svc, _, db, _ := newSheetsService(t, map[string][][]interface{}{
		"Characters!A1:G": {
			{"ID", "key", "name_uk", "name_en", "actors_ids", "movies_ids", "ID-2"},
			{"1", "ripley", "Ріплі", "Ripley", "1, 1, 7", "1, 2, 1", "1"},
		},
	})
	dbtest.Actor(t, db, "weaver", "Sigourney", "Weaver")
	dbtest.Movie(t, db, "alien", "Чужий", "Alien", time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC))
	dbtest.Movie(t, db, "aliens", "Чужі", "Aliens", time.Date(1986, 7, 18, 0, 0, 0, 0, time.UTC))

	_, err := svc.Export(context.Background(), EntityCharacters)
	require.NoError(t, err)

	var links []database.MovieActorCharacter
	require.NoError(t, db.Order("display_order").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, uint(1), links[0].MovieID)
	assert.Equal(t, uint(2), links[1].MovieID)
}

func TestAppendLatest(t *testing.T) {
	db := dbtest.New(t)
	client := &mockSheets{}
	svc := NewService(db, client, t.TempDir())
	ctx := context.Background()

	assert.Error(t, svc.AppendLatest(ctx, EntityRatings))

	owner := dbtest.User(t, db, "Owner", types.RoleOwner)
	movie := dbtest.Movie(t, db, "alien", "Чужий", "Alien", time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC))
	dbtest.Rate(t, db, movie, owner, 8)

	client.On("Append", mock.Anything, "Rating Backup!A1:R", mock.MatchedBy(func(rows [][]interface{}) bool {
		return len(rows) == 1 && len(rows[0]) == 18 && rows[0][1] == movie.ID && rows[0][2] == owner.ID
	})).Return(nil).Once()
	require.NoError(t, svc.AppendLatest(ctx, EntityRatings))

	client.On("Append", mock.Anything, "Movies!A1:W", mock.MatchedBy(func(rows [][]interface{}) bool {
		return rows[0][1] == "alien" && rows[0][6] == "25.05.1979" && rows[0][3] == "Alien"
	})).Return(nil).Once()
	require.NoError(t, svc.AppendLatest(ctx, EntityMovies))

	client.AssertExpectations(t)
}

func TestDisabledService(t *testing.T) {
	svc := NewService(dbtest.New(t), nil, t.TempDir())
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	_, err := svc.Export(ctx, EntityGenres)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, svc.AppendLatest(ctx, EntityMovies), ErrDisabled)

	_, err = svc.Export(ctx, "trailers")
	assert.ErrorContains(t, err, `unknown entity "trailers"`)
}

func TestEveryEntityIsRegistered(t *testing.T) {
	assert.Len(t, Entities(), len(registry))
	for _, name := range Entities() {
		_, err := lookup(name)
		assert.NoError(t, err, name)
	}
}
