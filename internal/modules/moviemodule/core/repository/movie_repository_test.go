package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/filters"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return db, mock
}

func TestExistsWrapsDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "movies"`).WillReturnError(errors.New("connection reset"))

	_, err := NewMovieRepository(db).Exists(context.Background(), "alien")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check movie alien")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByKeyNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "movies" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key"}))

	_, err := NewMovieRepository(db).GetByKey(context.Background(), "alien")
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPropagatesCountError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "movies"`).WillReturnError(errors.New("timeout"))

	_, _, err := NewMovieRepository(db).List(context.Background(), filters.Condition{}, types.SortByID, types.SortAsc, 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count movies")
}

func TestOrderClauses(t *testing.T) {
	assert.Equal(t, "ratings.updated_at DESC", UserOrder(types.SortByRatedAt, types.SortDesc))
	assert.Equal(t, "ratings.rating ASC", UserOrder(types.SortByID, types.SortAsc))
	assert.Equal(t, "RANDOM()", UserOrder(types.SortByRandom, types.SortAsc))
	assert.Equal(t, "movies.average_rating DESC", MovieOrder(types.SortByRating, types.SortDesc))
	assert.Equal(t, "movies.id ASC", MovieOrder(types.SortByRatedAt, types.SortAsc))
}

func TestMainGenreMatches(t *testing.T) {
	db := dbtest.New(t)
	when := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	alien := dbtest.Movie(t, db, "alien", "Чужий", "Alien", when)
	heat := dbtest.Movie(t, db, "heat", "Жара", "Heat", when)
	horror := dbtest.Genre(t, db, "horror", "Жахи", "Horror")
	scifi := dbtest.Genre(t, db, "sci-fi", "Фантастика", "Sci-Fi")
	crime := dbtest.Genre(t, db, "crime", "Кримінал", "Crime")

	dbtest.Link(t, db, &database.MovieGenre{MovieID: alien.ID, GenreID: horror.ID, PercentageMatch: 70})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: alien.ID, GenreID: scifi.ID, PercentageMatch: 70})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: heat.ID, GenreID: scifi.ID, PercentageMatch: 10})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: heat.ID, GenreID: crime.ID, PercentageMatch: 95})

	got, err := NewMovieRepository(db).MainGenreMatches(context.Background(), []uint{alien.ID, heat.ID})
	require.NoError(t, err)
	assert.Equal(t, "horror", got[alien.ID].Genre.Key)
	assert.Equal(t, "crime", got[heat.ID].Genre.Key)
	assert.Equal(t, "Crime", got[heat.ID].Genre.Translation(types.LanguageEN).Name)
}

func TestCollectionAndUniverseOrder(t *testing.T) {
	db := dbtest.New(t)
	repo := NewMovieRepository(db)
	ctx := context.Background()
	when := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	base := dbtest.Movie(t, db, "alien", "Чужий", "Alien", when)
	third := dbtest.Movie(t, db, "alien-3", "Чужий 3", "Alien 3", when)
	second := dbtest.Movie(t, db, "aliens", "Чужі", "Aliens", when)
	dbtest.Movie(t, db, "heat", "Жара", "Heat", when)

	for i, m := range []*database.Movie{base, second, third} {
		order := i + 1
		updates := map[string]interface{}{"collection_order": order}
		if m != base {
			updates["collection_base_movie_id"] = base.ID
		}
		require.NoError(t, db.Model(m).Updates(updates).Error)
	}

	var reloaded database.Movie
	require.NoError(t, db.First(&reloaded, third.ID).Error)
	movies, err := repo.Collection(ctx, &reloaded)
	require.NoError(t, err)
	keys := make([]string, 0, len(movies))
	for _, m := range movies {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"alien", "aliens", "alien-3"}, keys)

	universe := dbtest.SharedUniverse(t, db, "weyland", "Вейланд", "Weyland")
	for i, m := range []*database.Movie{third, base} {
		require.NoError(t, db.Model(m).Updates(map[string]interface{}{
			"shared_universe_id": universe.ID, "shared_universe_order": i + 1,
		}).Error)
	}
	movies, err = repo.UniverseMovies(ctx, universe.ID)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "alien-3", movies[0].Key)
	assert.Equal(t, "alien", movies[1].Key)
}

func TestListRatedBySkipsOtherUsers(t *testing.T) {
	db := dbtest.New(t)
	when := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	alien := dbtest.Movie(t, db, "alien", "Чужий", "Alien", when)
	heat := dbtest.Movie(t, db, "heat", "Жара", "Heat", when.AddDate(1, 0, 0))
	ann := dbtest.User(t, db, "ann", types.RoleUser)
	bob := dbtest.User(t, db, "bob", types.RoleUser)
	dbtest.Rate(t, db, alien, ann, 6)
	dbtest.Rate(t, db, heat, ann, 8)
	dbtest.Rate(t, db, heat, bob, 3)

	rated, total, err := NewMovieRepository(db).ListRatedBy(context.Background(), ann.ID, types.SortByReleaseDate, types.SortDesc, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rated, 1)
	assert.Equal(t, "heat", rated[0].Movie.Key)
	assert.Equal(t, 8.0, rated[0].Rating)
}

func TestUserScores(t *testing.T) {
	db := dbtest.New(t)
	when := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	alien := dbtest.Movie(t, db, "alien", "Чужий", "Alien", when)
	heat := dbtest.Movie(t, db, "heat", "Жара", "Heat", when)
	ann := dbtest.User(t, db, "ann", types.RoleUser)
	bob := dbtest.User(t, db, "bob", types.RoleUser)
	dbtest.Rate(t, db, alien, ann, 7)
	dbtest.Rate(t, db, heat, bob, 4)

	repo := NewMovieRepository(db)
	scores, err := repo.UserScores(context.Background(), ann.ID, []uint{alien.ID, heat.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]float64{alien.ID: 7}, scores)

	scores, err = repo.UserScores(context.Background(), ann.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
