package databasemodule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mantonx/titleseeker/internal/logger"
	"gorm.io/gorm"
)

// slowTransaction is the duration above which a finished transaction is logged
const slowTransaction = 2 * time.Second

// TransactionManager runs catalog writes in transactions and counts outcomes
// for the health endpoint
type TransactionManager struct {
	db        *gorm.DB
	started   atomic.Int64
	committed atomic.Int64
	rolled    atomic.Int64
	slow      atomic.Int64
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction runs fn in a transaction bound to ctx. It commits when fn
// returns nil. An error or a panic rolls back, and the panic is re-raised.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	id := tm.started.Add(1)
	start := time.Now()

	committed := false
	defer func() {
		if !committed {
			tm.rolled.Add(1)
		}
		if d := time.Since(start); d > slowTransaction {
			tm.slow.Add(1)
			logger.Warn("Slow transaction", "tx", id, "duration", d, "committed", committed)
		}
	}()

	err := tm.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		logger.Debug("Transaction rolled back", "tx", id, "error", err)
		return err
	}
	committed = true
	tm.committed.Add(1)
	return nil
}

// GetStats returns the transaction counters and connection pool usage
func (tm *TransactionManager) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"transactions_started":     tm.started.Load(),
		"transactions_committed":   tm.committed.Load(),
		"transactions_rolled_back": tm.rolled.Load(),
		"transactions_slow":        tm.slow.Load(),
	}
	if sqlDB, err := tm.db.DB(); err == nil {
		s := sqlDB.Stats()
		stats["connections"] = map[string]interface{}{
			"open":   s.OpenConnections,
			"in_use": s.InUse,
			"idle":   s.Idle,
		}
	}
	return stats
}
