package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/server"
)

func main() {
	if err := run(); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

// configPath prefers TITLESEEKER_CONFIG_PATH, then ./titleseeker.yaml
func configPath() string {
	if p := os.Getenv("TITLESEEKER_CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("./titleseeker.yaml"); err == nil {
		return "./titleseeker.yaml"
	}
	return ""
}

func run() error {
	path := configPath()
	if err := config.Load(path); err != nil {
		return fmt.Errorf("load configuration from %q: %w", path, err)
	}
	cfg := config.Get()
	logger.Configure(logger.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
	if path == "" {
		logger.Info("Using default configuration")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Initialize(cfg.Database); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	r, err := server.SetupRouter(database.GetDB())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.AddWatcher(func(old, updated *config.Config) {
		if old.Logging != updated.Logging {
			logger.Configure(logger.Options{Level: updated.Logging.Level, JSON: updated.Logging.JSON})
			logger.Info("Logging reconfigured", "level", updated.Logging.Level)
		}
	})
	if path != "" {
		if err := config.Watch(ctx); err != nil {
			logger.Warn("Configuration hot reload disabled", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Title Seeker server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Module shutdown error", "error", err)
	}
	logger.Info("Server shutdown complete")
	return nil
}
