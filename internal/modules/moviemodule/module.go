// Package moviemodule serves the movie catalog: listing, detail pages,
// searches, recommendations and movie creation.
package moviemodule

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
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/api"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/quickmovies"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/repository"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/service"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.movies"
	ModuleName    = "Movie Catalog"
	ModuleVersion = "1.0.0"
)

// Module implements the movie endpoints
type Module struct {
	db      *gorm.DB
	service *service.MovieService
	quick   *quickmovies.Store
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

// Migrate keeps the connection; the schema belongs to the database module
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return nil
}

// Init resolves the collaborating services and builds the movie service
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
	catalog, err := services.GetService[services.CatalogService](services.CatalogServiceName)
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}
	people, err := services.GetService[services.PeopleService](services.PeopleServiceName)
	if err != nil {
		return fmt.Errorf("people service: %w", err)
	}
	// Optional: without them posters are skipped and nothing is pushed to sheets
	assets, _ := services.GetService[services.AssetService](services.AssetServiceName)
	sheets, _ := services.GetService[services.SheetsService](services.SheetsServiceName)

	cfg := config.Get()
	m.quick = quickmovies.NewStore(cfg.App.QuickMoviesFile)
	m.users = middleware.NewUserResolver(m.db)
	m.service = service.NewMovieService(service.Options{
		Repository:   repository.NewMovieRepository(m.db),
		Transactions: tx,
		Catalog:      catalog,
		People:       people,
		Assets:       assets,
		Sheets:       sheets,
		QuickMovies:  m.quick,
		SyncOnCreate: cfg.Sheets.SyncOnCreate,
	})

	logger.Info("Movie module initialized", "version", ModuleVersion, "quick_movies", m.quick.Path())
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api.RegisterRoutes(router, api.NewHandler(m.service), m.users)
	logger.Debug("Movie module routes registered")
}

// Dependencies returns module dependencies
func (m *Module) Dependencies() []string {
	return []string{"system.database", "system.catalog", "system.people"}
}

// RequiredServices returns services this module requires
func (m *Module) RequiredServices() []string {
	return []string{
		services.TransactionServiceName,
		services.CatalogServiceName,
		services.PeopleServiceName,
		services.AssetServiceName,
		services.SheetsServiceName,
	}
}

// HealthCheck reports whether the quick movies file is readable
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}
	queued, err := m.quick.List()
	if err != nil {
		status.Status = modulemanager.HealthStateDegraded
		status.Message = err.Error()
		return status
	}
	status.Details = map[string]interface{}{"quick_movies": len(queued)}
	return status
}

// Service returns the movie service
func (m *Module) Service() *service.MovieService {
	return m.service
}
