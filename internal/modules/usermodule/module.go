// Package usermodule serves user ratings, statistics and the rating
// recalculation schedule.
package usermodule

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"github.com/mantonx/titleseeker/internal/modules/usermodule/api"
	"github.com/mantonx/titleseeker/internal/modules/usermodule/service"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.users"
	ModuleName    = "Users"
	ModuleVersion = "1.0.0"
)

// Module implements the user endpoints
type Module struct {
	db        *gorm.DB
	service   *service.UserService
	scheduler *service.RatingScheduler
	users     *middleware.UserResolver
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

// Init builds the user service and starts the rating scheduler when enabled
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
	m.service = service.NewUserService(m.db, tx)
	m.users = middleware.NewUserResolver(m.db)

	cfg := config.Get().Scheduler
	if cfg.Enabled {
		m.scheduler = service.NewRatingScheduler(m.db, cfg.RatingRecalcCron)
		if err := m.scheduler.Start(); err != nil {
			return err
		}
	}

	logger.Info("User module initialized", "version", ModuleVersion, "scheduler", cfg.Enabled)
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

// Shutdown stops the rating scheduler
func (m *Module) Shutdown(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}

// HealthCheck reports the scheduler state
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}
	if m.scheduler == nil {
		status.Message = "rating scheduler disabled"
		return status
	}
	status.Details = m.scheduler.Status()
	if _, failed := status.Details["last_error"]; failed {
		status.Status = modulemanager.HealthStateDegraded
		status.Message = "last rating recalculation failed"
	}
	return status
}

// Service returns the user service
func (m *Module) Service() *service.UserService {
	return m.service
}
