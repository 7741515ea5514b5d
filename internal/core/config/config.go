package config

import (
	"time"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "casemeta.toml"

type Config struct {
	Cache         Cache         `toml:"cache"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
	Parser        Parser        `toml:"parser"`
}

// Cache configures the persistent result cache and its in-memory front.
type Cache struct {
	Enabled       *bool  `toml:"enabled"`
	Path          string `toml:"path"`
	MemoryEntries int    `toml:"memory_entries"`
}

// Scan configures directory scans.
type Scan struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Workers int      `toml:"workers"`
	// Rate caps extractions per second; zero means unlimited.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	ExcludeDirs  []string      `toml:"exclude_dirs"`
	ExcludeFiles []string      `toml:"exclude_files"`
}

type Observability struct {
	// MetricsAddr enables the /metrics and /health server when set.
	MetricsAddr string `toml:"metrics_addr"`
	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

type Parser struct {
	MaxFileSize int64 `toml:"max_file_size"`
}

// CacheEnabled reports whether the persistent cache is on. It defaults to true.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}
