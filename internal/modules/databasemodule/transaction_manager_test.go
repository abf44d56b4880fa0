package databasemodule

import (
	"context"
	"errors"
	"testing"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithTransactionCommits(t *testing.T) {
	db := dbtest.New(t)
	tm := NewTransactionManager(db)

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&database.Genre{Key: "horror"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&database.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), tm.GetStats()["transactions_committed"])
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := dbtest.New(t)
	tm := NewTransactionManager(db)
	boom := errors.New("boom")

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&database.Genre{Key: "drama"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&database.Genre{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(1), tm.GetStats()["transactions_rolled_back"])
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db := dbtest.New(t)
	tm := NewTransactionManager(db)

	assert.Panics(t, func() {
		_ = tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&database.Genre{Key: "comedy"})
			panic("exploded")
		})
	})

	var count int64
	require.NoError(t, db.Model(&database.Genre{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(1), tm.GetStats()["transactions_rolled_back"])
}

func TestStatsCountStartedTransactions(t *testing.T) {
	db := dbtest.New(t)
	tm := NewTransactionManager(db)

	for i := 0; i < 3; i++ {
		_ = tm.WithTransaction(context.Background(), func(tx *gorm.DB) error { return nil })
	}
	stats := tm.GetStats()
	assert.Equal(t, int64(3), stats["transactions_started"])
	assert.Equal(t, int64(3), stats["transactions_committed"])
	assert.Equal(t, int64(0), stats["transactions_rolled_back"])
	assert.Contains(t, stats, "connections")
}
