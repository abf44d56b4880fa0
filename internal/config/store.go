package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/mantonx/titleseeker/internal/logger"
	"gopkg.in/yaml.v3"
)

// ChangeFunc is called in its own goroutine after every successful load
type ChangeFunc func(old, current *Config)

// Store holds the active configuration and the file it came from.
// Values are layered: defaults, then the file, then the environment.
type Store struct {
	mu        sync.RWMutex
	cfg       *Config
	path      string
	listeners []ChangeFunc
}

func NewStore() *Store {
	return &Store{cfg: DefaultConfig()}
}

// Load rebuilds the configuration from path. An empty or missing path
// leaves defaults and environment only. The active configuration is kept
// when the new one fails validation.
func (s *Store) Load(path string) error {
	loadDotEnv()

	cfg := &Config{}
	if err := setDefaults(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := decodeFile(path, cfg); err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			logger.Info("Configuration loaded", "path", path)
		}
	}
	if err := setFromEnv(cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.derive()

	s.mu.Lock()
	old := s.cfg
	s.cfg, s.path = cfg, path
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		go fn(old, cfg)
	}
	return nil
}

// Current returns a copy of the active configuration
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := *s.cfg
	return &c
}

func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// OnChange registers fn to run after each load
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// loadDotEnv reads .env files into the process environment without
// overriding variables that are already set
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			logger.Warn("Skipping env file", "file", name, "error", err)
		}
	}
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file format %q", ext)
	}
}

var global = NewStore()

// Get returns the process-wide configuration
func Get() *Config {
	return global.Current()
}

// Load replaces the process-wide configuration
func Load(path string) error {
	return global.Load(path)
}

// AddWatcher runs fn after every reload of the process-wide configuration
func AddWatcher(fn ChangeFunc) {
	global.OnChange(fn)
}
