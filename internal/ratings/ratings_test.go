package ratings

import (
	"context"
	"testing"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCalculate(t *testing.T) {
	avg, count := Calculate(nil)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	avg, count = Calculate([]database.Rating{{Rating: 7}, {Rating: 8}, {Rating: 8}})
	assert.Equal(t, 7.67, avg)
	assert.Equal(t, 3, count)
}

func TestAverageByCriteria(t *testing.T) {
	rs := []database.Rating{
		{Acting: 8, Music: 6, Humor: ptr(9)},
		{Acting: 7, Music: 5},
		{Acting: 6, Music: 4, Humor: ptr(6)},
	}

	c := AverageByCriteria(rs)
	assert.Equal(t, 7.0, c.Acting)
	assert.Equal(t, 5.0, c.Music)
	assert.Zero(t, c.Enjoyment)
	require.NotNil(t, c.Humor)
	assert.Equal(t, 7.5, *c.Humor)
	assert.Nil(t, c.ScareFactor)

	overall := Overall(rs)
	assert.Equal(t, 0.01, overall.Enjoyment)
	assert.Equal(t, 7.0, overall.Acting)

	empty := Overall(nil)
	assert.Equal(t, 0.01, empty.Acting)
	assert.Nil(t, empty.VisualEffects)
}

func TestForCriterion(t *testing.T) {
	r := &database.Rating{Acting: 5, Humor: ptr(8), ScareFactor: ptr(3)}

	c := ForCriterion(r, types.CriterionHumor)
	assert.Equal(t, 5.0, c.Acting)
	require.NotNil(t, c.Humor)
	assert.Nil(t, c.ScareFactor)

	assert.Nil(t, ForCriterion(r, types.CriterionBasic).Humor)
}

func TestApplyDropsZeroOptionalScores(t *testing.T) {
	var r database.Rating
	Criteria{Acting: 6, Humor: ptr(0), VisualEffects: ptr(7)}.Apply(&r)
	assert.Equal(t, 6.0, r.Acting)
	assert.Nil(t, r.Humor)
	require.NotNil(t, r.VisualEffects)
	assert.Equal(t, 7.0, *r.VisualEffects)
}

func TestProcessAndRecalculate(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	rated := database.Movie{Key: "alien"}
	unrated := database.Movie{Key: "thing", AverageRating: 9, RatingsCount: 4}
	require.NoError(t, db.Create(&rated).Error)
	require.NoError(t, db.Create(&unrated).Error)

	for i, score := range []float64{9, 6.5} {
		user := database.User{FirstName: "user", Email: string(rune('a'+i)) + "@example.com"}
		require.NoError(t, db.Create(&user).Error)
		require.NoError(t, db.Create(&database.Rating{MovieID: rated.ID, UserID: user.ID, Rating: score}).Error)
	}

	require.NoError(t, ProcessMovieRating(ctx, db, rated.ID))
	var got database.Movie
	require.NoError(t, db.First(&got, rated.ID).Error)
	assert.Equal(t, 7.75, got.AverageRating)
	assert.Equal(t, 2, got.RatingsCount)

	n, err := RecalculateAll(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.First(&got, unrated.ID).Error)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.RatingsCount)
}
