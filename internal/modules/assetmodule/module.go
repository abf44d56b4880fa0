// Package assetmodule stores uploaded posters and avatars on disk and
// serves them back with thumbnails and placeholders.
package assetmodule

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
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

const (
	ModuleID      = "system.assets"
	ModuleName    = "Asset Storage"
	ModuleVersion = "1.0.0"
)

// Module implements the file endpoints and the asset service
type Module struct {
	db      *gorm.DB
	store   *FileStore
	service *AssetService
	index   *DirIndex
	users   *middleware.UserResolver
	stop    context.CancelFunc
	done    chan struct{}
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

// Init prepares the upload directories and publishes the asset service
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	cfg := config.Get().Uploads
	m.store = NewFileStore(cfg.Dir)
	if err := m.store.EnsureDirs(); err != nil {
		return err
	}

	m.service = NewAssetService(m.db, m.store, Options{
		MaxFileSize:       cfg.MaxFileSize,
		ThumbnailWidth:    cfg.ThumbnailWidth,
		ThumbnailQuality:  cfg.ThumbnailQuality,
		PosterPlaceholder: cfg.PosterPlaceholder,
		AvatarPlaceholder: cfg.AvatarPlaceholder,
	})

	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	if cfg.WatchDirs {
		index := NewDirIndex(m.store)
		if err := index.Start(ctx); err != nil {
			logger.Warn("Upload index disabled", "error", err)
		} else {
			m.index = index
			m.service.UseIndex(index)
		}
	}

	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		if cfg.BackfillWorkers <= 0 {
			return
		}
		if _, err := m.service.BackfillThumbnails(ctx, cfg.BackfillWorkers); err != nil && ctx.Err() == nil {
			logger.Warn("Thumbnail backfill failed", "error", err)
		}
	}()

	m.users = middleware.NewUserResolver(m.db)
	if err := services.Register(services.AssetServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register asset service: %w", err)
	}

	logger.Info("Asset module initialized", "version", ModuleVersion, "dir", cfg.Dir, "indexed", m.index != nil)
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	RegisterRoutes(router, NewHandler(m.service), m.users)
}

func (m *Module) Dependencies() []string {
	return []string{"system.database"}
}

func (m *Module) ProvidedServices() []string {
	return []string{services.AssetServiceName}
}

// Shutdown stops the upload index and waits for the thumbnail backfill
func (m *Module) Shutdown(ctx context.Context) error {
	if m.stop != nil {
		m.stop()
	}
	if m.done == nil {
		return nil
	}
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HealthCheck reports stored file counts per kind
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = "module not initialized"
		return status
	}

	details := map[string]interface{}{"dir": m.store.Root(), "indexed": m.index != nil}
	for _, kind := range []types.AssetKind{types.AssetPosters, types.AssetActors, types.AssetDirectors} {
		n, err := m.store.Count(kind)
		if err != nil {
			status.Status = modulemanager.HealthStateDegraded
			status.Message = err.Error()
			continue
		}
		details[string(kind)] = n
	}
	status.Details = details
	return status
}

// Service returns the asset service
func (m *Module) Service() *AssetService {
	return m.service
}
