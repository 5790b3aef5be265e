package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LOIPEN"

// flagKeys maps global CLI flags to their configuration keys.
var flagKeys = map[string]string{
	"user":           "user",
	"db-driver":      "db_driver",
	"db-dsn":         "db_dsn",
	"db-dir":         "db_dir",
	"db-filename":    "db_filename",
	"location":       "time_location",
	"persist-pauses": "timer_persist_pauses",
	"addr":           "server_addr",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"app-timeout":    "app_timeout",
	"verbose":        "app_verbose",
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	v      *viper.Viper
	config *Config
}

// NewLoader creates a loader whose defaults come from NewConfig.
func NewLoader() *Loader {
	cfg := NewConfig()
	v := newViper(cfg)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return &Loader{v: v, config: cfg}
}

// newViper returns a viper instance with every key of c as its default.
func newViper(c *Config) *viper.Viper {
	v := viper.New()
	for key, value := range c.settings() {
		v.SetDefault(key, value)
	}
	return v
}

// Load resolves the configuration with the cascading strategy:
// 1. Start with defaults
// 2. Values from the .env file (LOIPEN_ENV_FILE, default ".env")
// 3. LOIPEN_* environment variables
// 4. Command line flags (bound later by ApplyFlags)
func (l *Loader) Load() (*Config, error) {
	if err := readEnvFile(l.v, l.v.GetString("env_file")); err != nil {
		return nil, err
	}
	if err := decode(l.v, l.config); err != nil {
		return nil, err
	}
	return l.config, nil
}

// readEnvFile merges the KEY=VALUE pairs of path below the environment. The
// LOIPEN_ prefix is optional in the file. A missing file is not an error.
func readEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigError{Field: "env_file", Message: err.Error()}
	}

	values := make(map[string]any)
	for _, key := range file.AllKeys() {
		values[strings.TrimPrefix(key, strings.ToLower(envPrefix)+"_")] = file.Get(key)
	}
	if err := v.MergeConfigMap(values); err != nil {
		return &ConfigError{Field: "env_file", Message: err.Error()}
	}
	return nil
}

// ApplyFlags overlays the global flags the user set on c and validates the
// result. Flags left at their defaults keep the loaded values.
func ApplyFlags(c *Config, flags *pflag.FlagSet) error {
	v := newViper(c)
	for name, key := range flagKeys {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return &ConfigError{Field: key, Message: err.Error()}
			}
		}
	}
	return decode(v, c)
}

// decode unmarshals v into c. --verbose raises the log level to debug.
func decode(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return &ConfigError{Field: "config", Message: err.Error()}
	}
	if c.Application.Verbose {
		c.Logging.Level = "debug"
	}
	return c.Validate()
}
