// Package modulemanager loads feature modules in dependency order and
// wires their routes into the HTTP engine.
package modulemanager

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Module is implemented by every catalog feature module
type Module interface {
	ID() string
	Name() string
	// Core modules are the ones the rest of the catalog builds on
	Core() bool
	Migrate(db *gorm.DB) error
	Init() error
}

// DependencyProvider lists module IDs that must be loaded first
type DependencyProvider interface {
	Dependencies() []string
}

// ServiceProvider names the services a module publishes
type ServiceProvider interface {
	ProvidedServices() []string
}

// ServiceConsumer names the services a module looks up. A module that
// consumes a service is loaded after the module providing it.
type ServiceConsumer interface {
	RequiredServices() []string
}

// ServiceRegistrar publishes services before any module is initialized
type ServiceRegistrar interface {
	RegisterServices() error
}

// ServiceInjector receives every published service keyed by name,
// after all RegisterServices calls and before Init.
type ServiceInjector interface {
	InjectServices(services map[string]interface{}) error
}

type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// Shutdowner is implemented by modules running background work
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// HealthState is the coarse health of a module
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is what a module reports on /api/health
type HealthStatus struct {
	Status      HealthState            `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Details     map[string]interface{} `json:"details,omitempty"`
}
