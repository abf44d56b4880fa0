// Package dbtest opens migrated in-memory databases for tests
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter int64

// New returns a fresh migrated sqlite database private to the test.
// Connections share one named in-memory cache so transactions and plain
// queries see the same data.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:titleseeker_test_%d?mode=memory&cache=shared", atomic.AddInt64(&counter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}
