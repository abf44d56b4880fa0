package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/modules/databasemodule"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var released = time.Date(1978, 10, 25, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*UserService, *gorm.DB) {
	db := dbtest.New(t)
	return NewUserService(db, databasemodule.NewTransactionManager(db)), db
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status())
	assert.Equal(t, message, appErr.Message)
}

func ratedAt(t *testing.T, db *gorm.DB, r *database.Rating, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(r).UpdateColumns(map[string]interface{}{"created_at": at, "updated_at": at}).Error)
}

func reloadMovie(t *testing.T, db *gorm.DB, id uint) database.Movie {
	t.Helper()
	var m database.Movie
	require.NoError(t, db.First(&m, id).Error)
	return m
}

func TestRateMovie(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := dbtest.User(t, db, "laurie", types.RoleUser)
	other := dbtest.User(t, db, "tommy", types.RoleUser)
	movie := dbtest.Movie(t, db, "halloween", "Хелловін", "Halloween", released)
	dbtest.Rate(t, db, movie, other, 7)

	humor := 0.0
	req := RateRequest{
		MovieKey: "halloween",
		Rating:   8,
		RatingCriteria: ratings.Criteria{
			Acting: 8, PlotStoryline: 7, Music: 9, Humor: &humor,
		},
	}
	require.NoError(t, svc.RateMovie(ctx, user, req))

	var stored database.Rating
	require.NoError(t, db.Where("movie_id = ? AND user_id = ?", movie.ID, user.ID).First(&stored).Error)
	assert.Equal(t, 8.0, stored.Rating)
	assert.Equal(t, 9.0, stored.Music)
	assert.Nil(t, stored.Humor)

	m := reloadMovie(t, db, movie.ID)
	assert.Equal(t, 7.5, m.AverageRating)
	assert.Equal(t, 2, m.RatingsCount)

	requireAppError(t, svc.RateMovie(ctx, user, req), 400, "Rating for movie already exists")

	req.MovieKey = "scream"
	requireAppError(t, svc.RateMovie(ctx, user, req), 404, "Movie not found")
}

func TestUpdateRating(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := dbtest.User(t, db, "laurie", types.RoleUser)
	halloween := dbtest.Movie(t, db, "halloween", "Хелловін", "Halloween", released)
	fog := dbtest.Movie(t, db, "the-fog", "Туман", "The Fog", released)

	req := RateRequest{MovieKey: "halloween", Rating: 6}
	requireAppError(t, svc.UpdateRating(ctx, user, req), 404, "User has no ratings to update")

	dbtest.Rate(t, db, fog, user, 5)
	requireAppError(t, svc.UpdateRating(ctx, user, req), 404, "Rating not found")

	dbtest.Rate(t, db, halloween, user, 9)
	req.RatingCriteria = ratings.Criteria{Acting: 6, Enjoyment: 7}
	require.NoError(t, svc.UpdateRating(ctx, user, req))

	var stored database.Rating
	require.NoError(t, db.Where("movie_id = ? AND user_id = ?", halloween.ID, user.ID).First(&stored).Error)
	assert.Equal(t, 6.0, stored.Rating)
	assert.Equal(t, 7.0, stored.Enjoyment)
	assert.Zero(t, stored.Music)

	m := reloadMovie(t, db, halloween.ID)
	assert.Equal(t, 6.0, m.AverageRating)
	assert.Equal(t, 1, m.RatingsCount)
}

func TestTimeChart(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := dbtest.User(t, db, "laurie", types.RoleUser)

	_, err := svc.TimeChart(ctx, user, types.LanguageEN)
	requireAppError(t, err, 404, "Movies not found")

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < chartPoints+2; i++ {
		m := dbtest.Movie(t, db, fmt.Sprintf("movie-%d", i), fmt.Sprintf("Фільм %d", i), fmt.Sprintf("Movie %d", i), released)
		r := dbtest.Rate(t, db, m, user, float64(i%10))
		// inserted newest first so the chart has to sort
		ratedAt(t, db, r, start.Add(-time.Duration(i)*time.Hour))
	}

	chart, err := svc.TimeChart(ctx, user, types.LanguageEN)
	require.NoError(t, err)
	points := chart.MovieChartData
	require.Len(t, points, chartPoints)

	assert.Equal(t, "Movie 29", points[0].MovieTitle)
	last := points[len(points)-1]
	assert.Equal(t, "Movie 0", last.MovieTitle)
	assert.True(t, last.CreatedAt.Equal(start))
	assert.Equal(t, 15, last.CreatedAt.Hour())
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].CreatedAt.Before(points[i].CreatedAt.Time))
	}

	body, err := json.Marshal(last)
	require.NoError(t, err)
	assert.JSONEq(t, `{"created_at":"2024-01-01T15:00:00","rating":0,"movie_title":"Movie 0"}`, string(body))
}

func TestChartTimeJSON(t *testing.T) {
	at := ChartTime{time.Date(2024, 12, 31, 22, 30, 5, 123456789, time.UTC)}
	body, err := json.Marshal(at)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-01T01:30:05.123456"`, string(body))

	body, err = json.Marshal(ChartTime{time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01T12:00:00"`, string(body))
}

func TestReport(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := dbtest.User(t, db, "laurie", types.RoleUser)

	action := dbtest.Genre(t, db, "action", "Бойовик", "Action")
	drama := dbtest.Genre(t, db, "drama", "Драма", "Drama")
	western := dbtest.Genre(t, db, "western", "Вестерн", "Western")

	alien := dbtest.Movie(t, db, "alien", "Чужий", "Alien", released)
	aliens := dbtest.Movie(t, db, "aliens", "Чужі", "Aliens", released)
	unforgiven := dbtest.Movie(t, db, "unforgiven", "Непрощений", "Unforgiven", released)
	dbtest.Link(t, db, &database.MovieGenre{MovieID: alien.ID, GenreID: action.ID, PercentageMatch: 60})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: alien.ID, GenreID: drama.ID, PercentageMatch: 40})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: aliens.ID, GenreID: action.ID, PercentageMatch: 100})
	dbtest.Link(t, db, &database.MovieGenre{MovieID: unforgiven.ID, GenreID: western.ID, PercentageMatch: 100})

	report, err := svc.Report(ctx, user, types.LanguageEN)
	require.NoError(t, err)
	assert.Empty(t, report.GenreData)
	assert.Empty(t, report.TopRatedMovies)
	assert.Nil(t, report.LastMovieRateDate)
	assert.Zero(t, report.MoviesRated)

	dbtest.Rate(t, db, alien, user, 9)
	dbtest.Rate(t, db, aliens, user, 7)
	last := dbtest.Rate(t, db, unforgiven, user, 8)
	lastAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ratedAt(t, db, last, lastAt)

	report, err = svc.Report(ctx, user, types.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, 3, report.MoviesRated)
	assert.Equal(t, []GenreCount{{Name: "Action", Count: 2}, {Name: "Drama", Count: 1}}, report.GenreData)
	require.Len(t, report.TopRatedMovies, 3)
	assert.Equal(t, "alien", report.TopRatedMovies[0].Key)
	assert.Equal(t, "unforgiven", report.TopRatedMovies[1].Key)
	assert.Equal(t, "aliens", report.TopRatedMovies[2].Key)
	require.NotNil(t, report.LastMovieRateDate)
	assert.True(t, report.LastMovieRateDate.Equal(lastAt))
	assert.Nil(t, report.TotalActorsCount)

	owner := dbtest.User(t, db, "owner", types.RoleOwner)
	dbtest.Actor(t, db, "weaver", "Sigourney", "Weaver")
	report, err = svc.Report(ctx, owner, types.LanguageUK)
	require.NoError(t, err)
	require.NotNil(t, report.TotalActorsCount)
	assert.Equal(t, int64(1), *report.TotalActorsCount)
}

func TestAll(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := svc.All(ctx)
	requireAppError(t, err, 404, "Users not found")

	owner := dbtest.User(t, db, "owner", types.RoleOwner)
	admin := dbtest.User(t, db, "admin", types.RoleAdmin)
	user := dbtest.User(t, db, "laurie", types.RoleUser)
	deleted := dbtest.User(t, db, "michael", types.RoleUser)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)

	movie := dbtest.Movie(t, db, "halloween", "Хелловін", "Halloween", released)
	fog := dbtest.Movie(t, db, "the-fog", "Туман", "The Fog", released)
	dbtest.Rate(t, db, movie, owner, 9)
	first := dbtest.Rate(t, db, movie, user, 8)
	second := dbtest.Rate(t, db, fog, user, 6)
	latest := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ratedAt(t, db, first, latest)
	ratedAt(t, db, second, latest.Add(-24*time.Hour))

	users, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, admin.UUID, users[0].UUID)
	assert.Zero(t, users[0].RatingsCount)
	assert.Nil(t, users[0].LastMovieRateDate)

	assert.Equal(t, user.UUID, users[1].UUID)
	assert.Equal(t, types.RoleUser, users[1].Role)
	assert.Equal(t, 2, users[1].RatingsCount)
	require.NotNil(t, users[1].LastMovieRateDate)
	assert.True(t, users[1].LastMovieRateDate.Equal(latest))
}

func TestSetLanguage(t *testing.T) {
	svc, db := newService(t)
	user := dbtest.User(t, db, "laurie", types.RoleUser)

	require.NoError(t, svc.SetLanguage(context.Background(), user, types.LanguageEN))
	assert.Equal(t, types.LanguageEN, user.PreferredLanguage)

	var stored database.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, types.LanguageEN, stored.PreferredLanguage)
}
