package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config is the full runtime configuration. Every leaf field carries an
// env tag naming the variable that overrides it and, optionally, a default.
type Config struct {
	App        AppConfig        `yaml:"app" json:"app"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Database   DatabaseConfig   `yaml:"database" json:"database"`
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`
	Uploads    UploadsConfig    `yaml:"uploads" json:"uploads"`
	Sheets     SheetsConfig     `yaml:"sheets" json:"sheets"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" json:"scheduler"`
	Admin      AdminConfig      `yaml:"admin" json:"admin"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

type AppConfig struct {
	Name            string `yaml:"name" json:"name" env:"APP_NAME" default:"Title Seeker"`
	Env             string `yaml:"env" json:"env" env:"APP_ENV" default:"development"`
	DataDir         string `yaml:"data_dir" json:"data_dir" env:"TITLESEEKER_DATA_DIR" default:"./data"`
	QuickMoviesFile string `yaml:"quick_movies_file" json:"quick_movies_file" env:"TITLESEEKER_QUICK_MOVIES_FILE"`
}

// ServerConfig is the HTTP listener and CORS policy
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host" env:"TITLESEEKER_HOST" default:"0.0.0.0"`
	Port           int           `yaml:"port" json:"port" env:"TITLESEEKER_PORT" default:"8000"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout" env:"TITLESEEKER_READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout" env:"TITLESEEKER_WRITE_TIMEOUT" default:"30s"`
	EnableCORS     bool          `yaml:"enable_cors" json:"enable_cors" env:"TITLESEEKER_ENABLE_CORS" default:"true"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins" env:"TITLESEEKER_ALLOWED_ORIGINS"`
}

// DatabaseConfig selects and configures the GORM dialector
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	URL          string `yaml:"url" json:"url" env:"DATABASE_URL"`
	Host         string `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port         int    `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username     string `yaml:"username" json:"username" env:"POSTGRES_USER" default:"titleseeker"`
	Password     string `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Database     string `yaml:"database" json:"database" env:"POSTGRES_DB" default:"titleseeker"`
	DatabasePath string `yaml:"database_path" json:"database_path" env:"SQLITE_PATH"`
	MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int    `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" default:"5"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

type PaginationConfig struct {
	DefaultSize int `yaml:"default_size" json:"default_size" env:"PAGINATION_DEFAULT_SIZE" default:"50"`
}

// UploadsConfig controls where images land and how they are served
type UploadsConfig struct {
	Dir               string `yaml:"dir" json:"dir" env:"UPLOADS_DIR" default:"./uploads"`
	MaxFileSize       int64  `yaml:"max_file_size" json:"max_file_size" env:"UPLOADS_MAX_FILE_SIZE" default:"10485760"`
	ThumbnailWidth    int    `yaml:"thumbnail_width" json:"thumbnail_width" env:"UPLOADS_THUMBNAIL_WIDTH" default:"300"`
	ThumbnailQuality  int    `yaml:"thumbnail_quality" json:"thumbnail_quality" env:"UPLOADS_THUMBNAIL_QUALITY" default:"85"`
	PosterPlaceholder string `yaml:"poster_placeholder" json:"poster_placeholder" env:"UPLOADS_POSTER_PLACEHOLDER"`
	AvatarPlaceholder string `yaml:"avatar_placeholder" json:"avatar_placeholder" env:"UPLOADS_AVATAR_PLACEHOLDER"`
	WatchDirs         bool   `yaml:"watch_dirs" json:"watch_dirs" env:"UPLOADS_WATCH_DIRS" default:"false"`
	BackfillWorkers   int    `yaml:"backfill_workers" json:"backfill_workers" env:"UPLOADS_BACKFILL_WORKERS" default:"2"`
}

// SheetsConfig holds the Google Sheets sync settings
type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled" env:"SHEETS_ENABLED" default:"false"`
	SpreadsheetID   string `yaml:"spreadsheet_id" json:"spreadsheet_id" env:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" env:"SHEETS_CREDENTIALS_FILE" default:"credentials.json"`
	TokenFile       string `yaml:"token_file" json:"token_file" env:"SHEETS_TOKEN_FILE" default:"token.json"`
	SyncOnCreate    bool   `yaml:"sync_on_create" json:"sync_on_create" env:"SHEETS_SYNC_ON_CREATE" default:"true"`
}

type SchedulerConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled" env:"SCHEDULER_ENABLED" default:"true"`
	RatingRecalcCron string `yaml:"rating_recalc_cron" json:"rating_recalc_cron" env:"SCHEDULER_RATING_RECALC_CRON" default:"0 0 4 * * *"`
}

// AdminConfig bootstraps the owner account from the admin CLI
type AdminConfig struct {
	FirstName string `yaml:"first_name" json:"first_name" env:"OWNER_FIRST_NAME" default:"Owner"`
	LastName  string `yaml:"last_name" json:"last_name" env:"OWNER_LAST_NAME"`
	Email     string `yaml:"email" json:"email" env:"OWNER_EMAIL"`
	Password  string `yaml:"password" json:"-" env:"OWNER_PASSWORD"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"LOG_LEVEL" default:"info"`
	JSON  bool   `yaml:"json" json:"json" env:"LOG_JSON" default:"false"`
}

// DefaultConfig returns the configuration built from default tags alone
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := setDefaults(cfg); err != nil {
		panic(fmt.Sprintf("config: bad default tag: %v", err))
	}
	cfg.derive()
	return cfg
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database type %q", c.Database.Type))
	}
	if c.Uploads.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("uploads.max_file_size must be positive, got %d", c.Uploads.MaxFileSize))
	}
	if c.Uploads.BackfillWorkers < 0 {
		errs = append(errs, fmt.Errorf("uploads.backfill_workers must not be negative"))
	}
	if c.Pagination.DefaultSize <= 0 {
		errs = append(errs, fmt.Errorf("pagination.default_size must be positive, got %d", c.Pagination.DefaultSize))
	}
	if c.Sheets.Enabled && c.Sheets.SpreadsheetID == "" {
		errs = append(errs, errors.New("sheets.enabled requires sheets.spreadsheet_id"))
	}
	return errors.Join(errs...)
}

// derive fills paths that default to locations under the data directory
func (c *Config) derive() {
	if c.Database.Type == "sqlite" && c.Database.DatabasePath == "" {
		c.Database.DatabasePath = filepath.Join(c.App.DataDir, "titleseeker.db")
	}
	if c.App.QuickMoviesFile == "" {
		c.App.QuickMoviesFile = filepath.Join(c.App.DataDir, "quick_movies.json")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
}
