// Package databasemodule owns the schema and the transaction manager.
package databasemodule

import (
	"context"
	"fmt"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.database"
	ModuleName    = "Database Manager"
	ModuleVersion = "1.0.0"
)

// Module migrates every table and provides transactions to other modules
type Module struct {
	db *gorm.DB
	tm *TransactionManager
}

func init() {
	Register()
}

// Register registers this module with the module manager
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates or updates all catalog tables
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	logger.Info("Migrating database schema")
	return database.Migrate(db)
}

// Init wires the transaction manager and publishes it
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	m.tm = NewTransactionManager(m.db)
	if err := services.Register(services.TransactionServiceName, m.tm); err != nil {
		return fmt.Errorf("failed to register transaction service: %w", err)
	}

	logger.Info("Database module initialized", "version", ModuleVersion)
	return nil
}

func (m *Module) ProvidedServices() []string {
	return []string{services.TransactionServiceName}
}

// HealthCheck pings the underlying connection
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{LastChecked: time.Now()}
	if m.db == nil || m.tm == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "database not initialized"
		return status
	}

	sqlDB, err := m.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
		return status
	}

	status.Status = modulemanager.HealthStateHealthy
	status.Details = m.tm.GetStats()
	return status
}

// TransactionManager returns the module's transaction manager
func (m *Module) TransactionManager() *TransactionManager {
	return m.tm
}
