// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers an optional YAML file and environment variables on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataPath points at the columnar dataset file. When the exact path
	// is missing, the newest file sharing its prefix and extension in
	// the same directory is used instead.
	DataPath string `koanf:"data_path"`

	// SampleCap bounds the in-memory dataset sample; 0 disables capping.
	SampleCap int `koanf:"sample_cap"`

	// BinCount sets the visualization histogram bin count.
	BinCount int `koanf:"bin_count"`

	// CacheTTLSeconds is the result cache time-to-live.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the result cache.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// SQLThreads configures the embedded SQL engine's parallelism.
	SQLThreads int `koanf:"sql_threads"`

	// SQLMemoryLimit is the embedded SQL engine's memory ceiling.
	SQLMemoryLimit string `koanf:"sql_memory_limit"`

	// MaxPageSize caps leaderboard page sizes.
	MaxPageSize int `koanf:"max_page_size"`

	// MetricsAddr exposes the Prometheus registry when non-empty.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		DataPath:        "data/lifts.parquet",
		SampleCap:       500_000,
		BinCount:        20,
		CacheTTLSeconds: 300,
		CacheMaxEntries: 1024,
		SQLThreads:      runtime.NumCPU(),
		SQLMemoryLimit:  "2GB",
		MaxPageSize:     500,
		MetricsAddr:     "",
	}
}
