// Package peoplemodule serves actors, directors and characters.
package peoplemodule

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"github.com/mantonx/titleseeker/internal/modules/peoplemodule/api"
	"github.com/mantonx/titleseeker/internal/modules/peoplemodule/service"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.people"
	ModuleName    = "People"
	ModuleVersion = "1.0.0"
)

// Module implements the people endpoints and the people service
type Module struct {
	db      *gorm.DB
	service *service.PeopleService
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

// Init builds the people service and publishes it
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
	assets, err := services.GetService[services.AssetService](services.AssetServiceName)
	if err != nil {
		logger.Warn("Asset service unavailable, avatars will not be stored", "error", err)
	}

	m.service = service.NewPeopleService(m.db, tx, assets)
	m.users = middleware.NewUserResolver(m.db)
	if err := services.Register(services.PeopleServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register people service: %w", err)
	}

	logger.Info("People module initialized", "version", ModuleVersion)
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api.RegisterRoutes(router, api.NewHandler(m.service), m.users)
}

func (m *Module) Dependencies() []string {
	return []string{"system.database", "system.assets"}
}

func (m *Module) RequiredServices() []string {
	return []string{services.TransactionServiceName, services.AssetServiceName}
}

func (m *Module) ProvidedServices() []string {
	return []string{services.PeopleServiceName}
}

// HealthCheck counts actors and directors
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}

	var actors, directors int64
	db := m.db.WithContext(ctx)
	if err := db.Model(&database.Actor{}).Count(&actors).Error; err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
		return status
	}
	if err := db.Model(&database.Director{}).Count(&directors).Error; err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
		return status
	}
	status.Details = map[string]interface{}{"actors": actors, "directors": directors}
	return status
}

// Service returns the people service
func (m *Module) Service() *service.PeopleService {
	return m.service
}
