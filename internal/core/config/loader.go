package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads a TOML configuration file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	return finalize(&cfg)
}

// LoadOrDefault loads path when it exists. A missing file at the default
// location is not an error: the defaults are returned instead. An explicitly
// requested file must exist.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return nil, err
}

// Default returns the configuration used when no file is present, with
// environment overrides applied.
func Default() (*Config, error) {
	return finalize(&Config{})
}

func finalize(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validateCache(cfg); err != nil {
		return nil, err
	}
	if err := validateScan(cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(cfg); err != nil {
		return nil, err
	}
	if err := validateParser(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultCachePath places the result cache under the user cache directory,
// falling back to a project-local directory when none is known.
func DefaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "casemeta", "cache.db")
	}
	return filepath.Join(".casemeta", "cache.db")
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = DefaultCachePath()
	}
	if cfg.Cache.MemoryEntries == 0 {
		cfg.Cache.MemoryEntries = 256
	}

	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = []string{"**/*.py"}
	}
	if cfg.Scan.Exclude == nil {
		cfg.Scan.Exclude = []string{"**/.git/**", "**/__pycache__/**", "**/.venv/**"}
	}
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
	if cfg.Scan.Rate > 0 && cfg.Scan.Burst == 0 {
		cfg.Scan.Burst = 1
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.ExcludeDirs == nil {
		cfg.Watch.ExcludeDirs = []string{".git", "__pycache__", ".casemeta"}
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "casemeta"
	}

	if cfg.Parser.MaxFileSize == 0 {
		cfg.Parser.MaxFileSize = 10 << 20
	}
}
