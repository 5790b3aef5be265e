package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration options for the Loipen tracker. Sections
// are squashed so every setting has one flat key; the environment variable
// is that key upper-cased with the LOIPEN_ prefix.
type Config struct {
	Database    DatabaseConfig    `mapstructure:",squash"`
	Time        TimeConfig        `mapstructure:",squash"`
	Timer       TimerConfig       `mapstructure:",squash"`
	Server      ServerConfig      `mapstructure:",squash"`
	Storage     StorageConfig     `mapstructure:",squash"`
	Logging     LoggingConfig     `mapstructure:",squash"`
	Application ApplicationConfig `mapstructure:",squash"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `mapstructure:"db_driver"`
	DSN            string        `mapstructure:"db_dsn"`
	Dir            string        `mapstructure:"db_dir"`
	Filename       string        `mapstructure:"db_filename"`
	QueryTimeout   time.Duration `mapstructure:"db_query_timeout"`
	DirPermissions uint32        `mapstructure:"db_dir_permissions"`
}

// TimeConfig holds the time zone that defines "today" and time-of-day columns
type TimeConfig struct {
	Location      string `mapstructure:"time_location"`
	DisplayFormat string `mapstructure:"time_display_format"`
}

// TimerConfig holds timer session configuration
type TimerConfig struct {
	PersistPauses   bool          `mapstructure:"timer_persist_pauses"`
	TickInterval    time.Duration `mapstructure:"timer_tick"`
	FirstSeasonYear int           `mapstructure:"first_season_year"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string        `mapstructure:"server_addr"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	ReadHeaderTimeout time.Duration `mapstructure:"server_read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"server_shutdown_timeout"`
}

// StorageConfig holds the receipt bucket configuration. An empty bucket disables receipts.
type StorageConfig struct {
	Bucket        string        `mapstructure:"s3_bucket"`
	Region        string        `mapstructure:"s3_region"`
	Endpoint      string        `mapstructure:"s3_endpoint"`
	AccessKey     string        `mapstructure:"s3_access_key"`
	SecretKey     string        `mapstructure:"s3_secret_key"`
	UsePathStyle  bool          `mapstructure:"s3_path_style"`
	PresignExpiry time.Duration `mapstructure:"s3_presign_expiry"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"app_timeout"`
	Verbose bool          `mapstructure:"app_verbose"`
	UserID  string        `mapstructure:"user"`
	EnvFile string        `mapstructure:"env_file"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".loipen")

	return &Config{
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Dir:            defaultDBDir,
			Filename:       "loipen.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Time: TimeConfig{
			Location:      "Europe/Zurich",
			DisplayFormat: "02.01.2006 15:04",
		},
		Timer: TimerConfig{
			PersistPauses:   true,
			TickInterval:    time.Second,
			FirstSeasonYear: 2020,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			TokenTTL:          12 * time.Hour,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Storage: StorageConfig{
			Region:        "us-east-1",
			PresignExpiry: 15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			UserID:  os.Getenv("USER"),
			EnvFile: ".env",
		},
	}
}

// GetDSN returns the connection string. SQLite defaults to a file in Database.Dir.
func (c *Config) GetDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.IsSQLite() {
		return filepath.Join(c.Database.Dir, c.Database.Filename)
	}
	return ""
}

// IsSQLite reports whether the embedded SQLite store is configured.
func (c *Config) IsSQLite() bool {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}

// GetLocation loads the configured time zone
func (c *Config) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Time.Location)
}

// ReceiptsEnabled reports whether a receipt bucket is configured
func (c *Config) ReceiptsEnabled() bool {
	return strings.TrimSpace(c.Storage.Bucket) != ""
}

// settings lists every key with its current value. Loaders register these
// as defaults so environment variables and flags can override each one.
func (c *Config) settings() map[string]any {
	return map[string]any{
		"db_driver":                  c.Database.Driver,
		"db_dsn":                     c.Database.DSN,
		"db_dir":                     c.Database.Dir,
		"db_filename":                c.Database.Filename,
		"db_query_timeout":           c.Database.QueryTimeout,
		"db_dir_permissions":         c.Database.DirPermissions,
		"time_location":              c.Time.Location,
		"time_display_format":        c.Time.DisplayFormat,
		"timer_persist_pauses":       c.Timer.PersistPauses,
		"timer_tick":                 c.Timer.TickInterval,
		"first_season_year":          c.Timer.FirstSeasonYear,
		"server_addr":                c.Server.Addr,
		"jwt_secret":                 c.Server.JWTSecret,
		"token_ttl":                  c.Server.TokenTTL,
		"server_read_header_timeout": c.Server.ReadHeaderTimeout,
		"server_shutdown_timeout":    c.Server.ShutdownTimeout,
		"s3_bucket":                  c.Storage.Bucket,
		"s3_region":                  c.Storage.Region,
		"s3_endpoint":                c.Storage.Endpoint,
		"s3_access_key":              c.Storage.AccessKey,
		"s3_secret_key":              c.Storage.SecretKey,
		"s3_path_style":              c.Storage.UsePathStyle,
		"s3_presign_expiry":          c.Storage.PresignExpiry,
		"log_level":                  c.Logging.Level,
		"log_format":                 c.Logging.Format,
		"app_timeout":                c.Application.Timeout,
		"app_verbose":                c.Application.Verbose,
		"user":                       c.Application.UserID,
		"env_file":                   c.Application.EnvFile,
	}
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.IsSQLite() && c.Database.DSN == "" {
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	}
	if !c.IsSQLite() && c.Database.DSN == "" {
		return &ConfigError{Field: "database.dsn", Message: "postgres requires a connection string"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	// Validate time configuration
	if _, err := c.GetLocation(); err != nil {
		return &ConfigError{Field: "time.location", Message: "unknown time zone " + c.Time.Location}
	}
	if c.Time.DisplayFormat == "" {
		return &ConfigError{Field: "time.display_format", Message: "display format cannot be empty"}
	}

	// Validate timer configuration
	if c.Timer.TickInterval <= 0 {
		return &ConfigError{Field: "timer.tick_interval", Message: "tick interval must be positive"}
	}
	if c.Timer.FirstSeasonYear < 2000 {
		return &ConfigError{Field: "timer.first_season_year", Message: "first season year must be 2000 or later"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.TokenTTL <= 0 {
		return &ConfigError{Field: "server.token_ttl", Message: "token lifetime must be positive"}
	}

	// Validate storage configuration
	if c.ReceiptsEnabled() && c.Storage.PresignExpiry <= 0 {
		return &ConfigError{Field: "storage.presign_expiry", Message: "presign expiry must be positive"}
	}

	// Validate logging configuration
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
