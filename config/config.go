package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys shared between viper, environment variables and cobra flag bindings.
const (
	KeyDatabaseURL = "database_url"
	KeySchema      = "db_schema"
	KeyPort        = "server_port"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
)

// Config is the resolved runtime configuration.
type Config struct {
	DatabaseURL string
	Schema      string
	Port        string
	LogLevel    string
	LogFormat   string
}

// ErrMissingDatabaseURL is returned when no connection string was configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL not set (in .env, config file or environment)")

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySchema, "public")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadEnv loads a .env file into the process environment if one exists.
// It reports whether a file was found.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// New prepares a viper instance reading environment variables and, when
// configFile is non-empty, a config file (yaml, toml or json).
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{KeyDatabaseURL, KeySchema, KeyPort, KeyLogLevel, KeyLogFormat} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return v, nil
}

// FromViper resolves a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabaseURL: v.GetString(KeyDatabaseURL),
		Schema:      v.GetString(KeySchema),
		Port:        v.GetString(KeyPort),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields every command needs.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Schema == "" {
		return errors.New("database schema must not be empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q (console, json)", c.LogFormat)
	}
	return nil
}
