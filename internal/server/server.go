// Package server assembles the HTTP engine: middleware, module loading and
// the discovery and health endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
	"gorm.io/gorm"

	// Import all modules to trigger their registration
	_ "github.com/mantonx/titleseeker/internal/modules/assetmodule"
	_ "github.com/mantonx/titleseeker/internal/modules/catalogmodule"
	_ "github.com/mantonx/titleseeker/internal/modules/databasemodule"
	_ "github.com/mantonx/titleseeker/internal/modules/moviemodule"
	_ "github.com/mantonx/titleseeker/internal/modules/peoplemodule"
	_ "github.com/mantonx/titleseeker/internal/modules/sheetsmodule"
	_ "github.com/mantonx/titleseeker/internal/modules/usermodule"
)

// SetupRouter configures the engine for the global module registry
func SetupRouter(db *gorm.DB) (*gin.Engine, error) {
	return NewRouter(config.Get().Server, modulemanager.Registry, db)
}

// NewRouter loads every module of registry and mounts their routes next to
// the core endpoints
func NewRouter(cfg config.ServerConfig, registry *modulemanager.ModuleRegistry, db *gorm.DB) (*gin.Engine, error) {
	r := gin.New()
	r.Use(api.ErrorMiddleware(), middleware.RequestLogger(), middleware.ErrorLogger())
	if cfg.EnableCORS {
		r.Use(cors.New(corsConfig(cfg)))
	}

	if err := initializeModules(registry, db); err != nil {
		return nil, err
	}

	setupRoutes(r, registry)
	return r, nil
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

// initializeModules migrates and initializes the registry's modules
func initializeModules(registry *modulemanager.ModuleRegistry, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}
	if err := registry.LoadAll(db); err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	logModuleStatus(registry)
	return nil
}

// logModuleStatus logs the loaded modules
func logModuleStatus(registry *modulemanager.ModuleRegistry) {
	modules := registry.ListModules()
	logger.Info("Module system initialized", "modules", len(modules))
	for _, m := range modules {
		logger.Debug("Module", "id", m.ID(), "name", m.Name(), "core", m.Core())
	}
}

// Shutdown stops background work of the global registry's modules
func Shutdown(ctx context.Context) error {
	return modulemanager.ShutdownAll(ctx)
}
