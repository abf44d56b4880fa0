// Package catalogmodule owns the movie taxonomy: genres, subgenres,
// specifications, keywords, action times, characters, shared universes
// and visual profile categories.
package catalogmodule

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/catalogmodule/api"
	"github.com/mantonx/titleseeker/internal/modules/catalogmodule/service"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.catalog"
	ModuleName    = "Catalog Taxonomy"
	ModuleVersion = "1.0.0"
)

// Module implements the taxonomy endpoints and the catalog service
type Module struct {
	db      *gorm.DB
	service *service.CatalogService
	users   *middleware.UserResolver
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

func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return nil
}

// Init builds the catalog service and publishes it
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := services.GetService[services.TransactionService](services.TransactionServiceName)
	if err != nil {
		return fmt.Errorf("transaction service: %w", err)
	}

	m.service = service.NewCatalogService(m.db, tx)
	m.users = middleware.NewUserResolver(m.db)
	if err := services.Register(services.CatalogServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register catalog service: %w", err)
	}

	logger.Info("Catalog module initialized", "version", ModuleVersion)
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api.RegisterRoutes(router, api.NewHandler(m.service), m.users)
}

func (m *Module) Dependencies() []string {
	return []string{"system.database"}
}

func (m *Module) RequiredServices() []string {
	return []string{services.TransactionServiceName}
}

func (m *Module) ProvidedServices() []string {
	return []string{services.CatalogServiceName}
}

// HealthCheck counts genres; an empty taxonomy is degraded
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}

	var genres int64
	if err := m.db.WithContext(ctx).Model(&database.Genre{}).Count(&genres).Error; err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
		return status
	}
	if genres == 0 {
		status.Status = modulemanager.HealthStateDegraded
		status.Message = "no genres"
	}
	status.Details = map[string]interface{}{"genres": genres}
	return status
}

// Service returns the catalog service
func (m *Module) Service() *service.CatalogService {
	return m.service
}
