// Package sheetsmodule syncs the catalog with the Google spreadsheet the
// collection was first kept in. Sheets are exported into JSON dumps and
// the database, and new rows are appended back.
package sheetsmodule

import (
	"context"
	"fmt"
	"time"

	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.sheets"
	ModuleName    = "Google Sheets Sync"
	ModuleVersion = "1.0.0"
)

// Module publishes the sheets service
type Module struct {
	db      *gorm.DB
	service *Service
	initErr error
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
func (m *Module) Core() bool   { return false }

func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return nil
}

// Init connects to the spreadsheet when sync is enabled. A failed
// connection leaves the service registered but disabled.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	cfg := config.Get()
	var client Client
	if cfg.Sheets.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c, err := NewGoogleClient(ctx, cfg.Sheets)
		if err != nil {
			m.initErr = err
			logger.Warn("Google Sheets sync disabled", "error", err)
		} else {
			client = c
		}
	}

	m.service = NewService(m.db, client, cfg.App.DataDir)
	if err := services.Register(services.SheetsServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register sheets service: %w", err)
	}

	logger.Info("Sheets module initialized", "version", ModuleVersion, "enabled", m.service.Enabled())
	return nil
}

func (m *Module) Dependencies() []string {
	return []string{"system.database"}
}

func (m *Module) ProvidedServices() []string {
	return []string{services.SheetsServiceName}
}

// HealthCheck is degraded when sync is configured but the client failed
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}
	status.Details = map[string]interface{}{"enabled": m.service.Enabled()}
	if m.initErr != nil {
		status.Status = modulemanager.HealthStateDegraded
		status.Message = m.initErr.Error()
	}
	return status
}

// Service returns the sheets service
func (m *Module) Service() *Service {
	return m.service
}
