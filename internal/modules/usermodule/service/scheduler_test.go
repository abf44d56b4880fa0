package service

import (
	"context"
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingSchedulerRun(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.User(t, db, "laurie", types.RoleUser)
	other := dbtest.User(t, db, "tommy", types.RoleUser)
	movie := dbtest.Movie(t, db, "halloween", "Хелловін", "Halloween", released)
	dbtest.Rate(t, db, movie, user, 9)
	dbtest.Rate(t, db, movie, other, 6)

	s := NewRatingScheduler(db, "0 0 4 * * *")
	s.Run(context.Background())

	m := reloadMovie(t, db, movie.ID)
	assert.Equal(t, 7.5, m.AverageRating)
	assert.Equal(t, 2, m.RatingsCount)

	status := s.Status()
	assert.Equal(t, 1, status["movies_rated"])
	assert.NotContains(t, status, "last_error")
	assert.NotContains(t, status, "next_run")
}

func TestRatingSchedulerStart(t *testing.T) {
	db := dbtest.New(t)

	bad := NewRatingScheduler(db, "every night")
	assert.Error(t, bad.Start())

	s := NewRatingScheduler(db, "0 0 4 * * *")
	require.NoError(t, s.Start())
	next, ok := s.Status()["next_run"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 4, next.Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
