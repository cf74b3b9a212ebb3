// Package config loads the settings of both binaries from environment
// variables, with defaults, and validates them on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Security SecurityConfig
	Tree     TreeConfig
	I18n     I18nConfig
	Import   ImportConfig
	Verify   VerifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, running imports included (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-import requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string of the Qubit database.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey guards mutating API routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RatePerMinute is the request budget per client IP. Zero disables it (default: 600)
	RatePerMinute int `env:"RATE_LIMIT_PER_MINUTE" default:"600"`
}

// TreeConfig holds nested-set settings.
type TreeConfig struct {
	// LockTimeout bounds the wait for the per-table lock taken by every
	// structural mutation. Zero waits forever (default: 10s)
	LockTimeout time.Duration `env:"TREE_LOCK_TIMEOUT" default:"10s"`
}

// I18nConfig holds translation settings.
type I18nConfig struct {
	// FallbackCulture is read when a field is missing in the requested culture (default: en)
	FallbackCulture string `env:"I18N_FALLBACK_CULTURE" default:"en"`
}

// ImportConfig holds repository spreadsheet import settings.
type ImportConfig struct {
	// DefaultUser is the username recorded on imported notes (default: qubit)
	DefaultUser string `env:"IMPORT_USER" default:"qubit"`

	// DefaultLang is the culture of imported text (default: en)
	DefaultLang string `env:"IMPORT_LANG" default:"en"`

	// ParentID is the actor the repositories are created under (default: the actor root)
	ParentID int64 `env:"IMPORT_PARENT_ID" default:"3"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"2"`
	MaxWait       time.Duration `env:"IMPORT_MAX_WAIT" default:"30s"`

	// MaxFileSize is the largest accepted upload in bytes (default: 32MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"33554432"`

	// Timeout bounds one import run (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`

	// CountriesFile is an optional YAML file of country name aliases
	CountriesFile string `env:"IMPORT_COUNTRIES_FILE"`
}

// VerifyConfig holds the periodic integrity check settings.
type VerifyConfig struct {
	// Enabled starts the verify scheduler with the server (default: true)
	Enabled bool `env:"VERIFY_ENABLED" default:"true"`

	// Interval is how often every forest is checked (default: 1h)
	Interval time.Duration `env:"VERIFY_INTERVAL" default:"1h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
