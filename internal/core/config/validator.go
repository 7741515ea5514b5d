package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

func validateCache(cfg *Config) error {
	if cfg.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must be >= 0, got %d", cfg.Cache.MemoryEntries)
	}
	if cfg.CacheEnabled() && strings.TrimSpace(cfg.Cache.Path) == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}

func validateScan(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.Rate < 0 {
		return fmt.Errorf("scan.rate must be >= 0, got %g", cfg.Scan.Rate)
	}
	if cfg.Scan.Burst < 0 {
		return fmt.Errorf("scan.burst must be >= 0, got %d", cfg.Scan.Burst)
	}
	patterns := append(append([]string{}, cfg.Scan.Include...), cfg.Scan.Exclude...)
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scan pattern %q is invalid", pattern)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce)
	}
	patterns := append(append([]string{}, cfg.Watch.ExcludeDirs...), cfg.Watch.ExcludeFiles...)
	for _, pattern := range patterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("watch exclude pattern %q is invalid: %w", pattern, err)
		}
	}
	return nil
}

func validateParser(cfg *Config) error {
	if cfg.Parser.MaxFileSize < 0 {
		return fmt.Errorf("parser.max_file_size must be >= 0, got %d", cfg.Parser.MaxFileSize)
	}
	return nil
}
