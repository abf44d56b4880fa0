package modulemanager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/services"
	"gorm.io/gorm"
)

// ErrAlreadyLoaded is returned by LoadAll on a registry that is running
var ErrAlreadyLoaded = errors.New("modules already loaded")

// ModuleRegistry holds the registered modules and, once loaded, the order
// they were initialized in
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]Module
	loaded  []Module
}

func NewRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]Module)}
}

// Registry collects the modules registering themselves from init()
var Registry = NewRegistry()

// Register adds m to the global registry
func Register(m Module) {
	Registry.Register(m)
}

// Register adds m, replacing any module with the same ID
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.modules[m.ID()]; dup {
		logger.Warn("Module registered twice, keeping the last one", "module", m.ID())
	}
	r.modules[m.ID()] = m
}

// LoadAll brings every registered module up in dependency order. Services
// are published first, then injected, then each module is migrated and
// initialized. A failing module stops the load.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded != nil {
		return ErrAlreadyLoaded
	}

	for _, missing := range missingServices(r.modules) {
		logger.Warn("Required service has no provider", "requirement", missing)
	}

	order, err := loadOrder(r.modules)
	if err != nil {
		return err
	}

	for _, m := range order {
		if reg, ok := m.(ServiceRegistrar); ok {
			if err := reg.RegisterServices(); err != nil {
				return fmt.Errorf("%s: register services: %w", m.ID(), err)
			}
		}
	}

	available := services.All()
	for _, m := range order {
		if inj, ok := m.(ServiceInjector); ok {
			if err := inj.InjectServices(available); err != nil {
				return fmt.Errorf("%s: inject services: %w", m.ID(), err)
			}
		}
	}

	for _, m := range order {
		if err := m.Migrate(db); err != nil {
			return fmt.Errorf("%s: migrate: %w", m.ID(), err)
		}
		if err := m.Init(); err != nil {
			return fmt.Errorf("%s: init: %w", m.ID(), err)
		}
		logger.Info("Module loaded", "module", m.ID())
	}

	r.loaded = order
	return nil
}

// ListModules returns the registered modules sorted by ID
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// RegisterRoutes mounts the routes of loaded modules in load order
func (r *ModuleRegistry) RegisterRoutes(router *gin.Engine) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.loaded {
		if rr, ok := m.(RouteRegistrar); ok {
			rr.RegisterRoutes(router)
		}
	}
}

// CheckHealth asks every loaded module that reports health
func (r *ModuleRegistry) CheckHealth(ctx context.Context) map[string]HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]HealthStatus)
	for _, m := range r.loaded {
		if hc, ok := m.(HealthChecker); ok {
			out[m.ID()] = hc.HealthCheck(ctx)
		}
	}
	return out
}

// ShutdownAll stops the global registry's modules
func ShutdownAll(ctx context.Context) error {
	return Registry.ShutdownAll(ctx)
}

// ShutdownAll stops loaded modules in reverse load order. Every module is
// asked to stop even when an earlier one fails; the first error is returned.
func (r *ModuleRegistry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for i := len(r.loaded) - 1; i >= 0; i-- {
		m := r.loaded[i]
		s, ok := m.(Shutdowner)
		if !ok {
			continue
		}
		if err := s.Shutdown(ctx); err != nil {
			logger.Error("Module shutdown failed", "module", m.ID(), "error", err)
			if first == nil {
				first = fmt.Errorf("%s: shutdown: %w", m.ID(), err)
			}
		}
	}
	r.loaded = nil
	return first
}
