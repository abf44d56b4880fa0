package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	"github.com/mantonx/titleseeker/internal/modules/modulemanager"
)

const listEndpointsPath = "/api/list-endpoints/"

// setupRoutes configures the core endpoints and every module's routes
func setupRoutes(r *gin.Engine, registry *modulemanager.ModuleRegistry) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, listEndpointsPath)
	})

	api := r.Group("/api")
	setupHealthRoutes(api, registry)

	api.GET("/list-endpoints/", handleListEndpoints)
	apiroutes.Register(api.BasePath()+"/list-endpoints/", "GET", "List all registered API endpoints.")

	registry.RegisterRoutes(r)
}

// setupHealthRoutes configures the health check endpoint
func setupHealthRoutes(api *gin.RouterGroup, registry *modulemanager.ModuleRegistry) {
	api.GET("/health", healthHandler(registry))
	apiroutes.Register(api.BasePath()+"/health", "GET", "System health check with per-module status.")
}

func handleListEndpoints(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"endpoints": apiroutes.Get()})
}

// healthHandler reports 503 when any module is unhealthy and "degraded"
// when some module runs with reduced functionality
func healthHandler(registry *modulemanager.ModuleRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		modules := registry.CheckHealth(ctx)
		status, code := "ok", http.StatusOK
		for _, h := range modules {
			switch h.Status {
			case modulemanager.HealthStateUnhealthy:
				status, code = "unhealthy", http.StatusServiceUnavailable
			case modulemanager.HealthStateDegraded:
				if code == http.StatusOK {
					status = "degraded"
				}
			}
		}

		c.JSON(code, gin.H{
			"status":  status,
			"time":    time.Now().UTC(),
			"modules": modules,
			"system":  systemStats(ctx),
		})
	}
}
