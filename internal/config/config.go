// Package config provides centralized configuration management for leadsync.
// Values come from built-in defaults, an optional YAML file and environment
// variables, in increasing order of precedence. Everything is validated on
// startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Tracker  TrackerConfig  `yaml:"tracker"`
	Sync     SyncConfig     `yaml:"sync"`
	Input    InputConfig    `yaml:"input"`
	Server   ServerConfig   `yaml:"server"`
	Security SecurityConfig `yaml:"security"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TrackerConfig holds the issue tracker connection settings.
type TrackerConfig struct {
	// Endpoint is the GraphQL endpoint URL
	Endpoint string `yaml:"endpoint" env:"LINEAR_ENDPOINT" default:"https://api.linear.app/graphql"`

	// APIKey authenticates requests. It is never read from a config file.
	APIKey string `yaml:"-" env:"LINEAR_API_KEY" envAlt:"LEADSYNC_API_KEY"`

	// Timeout bounds a single remote request (default: 30s)
	Timeout time.Duration `yaml:"timeout" env:"LINEAR_TIMEOUT" default:"30s"`
}

// SyncConfig holds the defaults for sync runs.
type SyncConfig struct {
	// Hierarchy is the company representation: projects or issues (default: projects)
	Hierarchy string `yaml:"hierarchy" env:"SYNC_HIERARCHY" default:"projects"`

	// LabelName is attached to contact issues in projects mode
	LabelName string `yaml:"label_name" env:"SYNC_LABEL_NAME" default:"New Contact"`

	// DescriptionLimit caps the short project description (default: 255)
	DescriptionLimit int `yaml:"description_limit" env:"SYNC_DESCRIPTION_LIMIT" default:"255"`

	// MaxConcurrentRuns limits parallel runs started through the HTTP API (default: 1)
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" env:"SYNC_MAX_CONCURRENT_RUNS" default:"1"`

	// MaxWaitTime is how long a run waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `yaml:"max_wait_time" env:"SYNC_MAX_WAIT_TIME" default:"30s"`

	// RunTimeout bounds a single run started through the HTTP API (default: 10m)
	RunTimeout time.Duration `yaml:"run_timeout" env:"SYNC_RUN_TIMEOUT" default:"10m"`
}

// InputConfig holds input file settings.
type InputConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes (default: 10MB)
	MaxFileSize int64 `yaml:"max_file_size" env:"INPUT_MAX_FILE_SIZE" default:"10485760"`

	// PreviewRows is the number of rows shown by detect (default: 5)
	PreviewRows int `yaml:"preview_rows" env:"INPUT_PREVIEW_ROWS" default:"5"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 15s)
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is 0 by default since sync responses wait for the whole run
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds HTTP API access settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes
	RequireAPIKey bool `yaml:"require_api_key" env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `yaml:"-" env:"API_KEYS"`
}

// DatabaseConfig holds the optional run history database settings.
// History is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `yaml:"min_conns" env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether run history is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
