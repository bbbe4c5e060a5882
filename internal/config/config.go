// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "context"

// Store backend names accepted by the service.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the session store backend: sqlite or memory.
	Store string `koanf:"store"`

	// DBPath is the SQLite database file path.
	DBPath string `koanf:"db_path"`

	// BusyTimeoutMS is the SQLite busy timeout in milliseconds.
	BusyTimeoutMS int `koanf:"busy_timeout_ms"`

	// MaxSessionEmployees caps the roster size accepted on session creation.
	MaxSessionEmployees int `koanf:"max_session_employees"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		Store:               StoreSQLite,
		DBPath:              "ninebox.db",
		BusyTimeoutMS:       5000,
		MaxSessionEmployees: 5000,
	}
}
