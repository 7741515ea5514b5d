package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CASEMETA_[SECTION]_[KEY] (e.g., CASEMETA_CACHE_PATH).
func ApplyEnvOverrides(cfg *Config) {
	// Cache
	setEnvBoolPtr(&cfg.Cache.Enabled, "CASEMETA_CACHE_ENABLED")
	setEnvString(&cfg.Cache.Path, "CASEMETA_CACHE_PATH")
	setEnvInt(&cfg.Cache.MemoryEntries, "CASEMETA_CACHE_MEMORY_ENTRIES")

	// Scan
	setEnvList(&cfg.Scan.Include, "CASEMETA_SCAN_INCLUDE")
	setEnvList(&cfg.Scan.Exclude, "CASEMETA_SCAN_EXCLUDE")
	setEnvInt(&cfg.Scan.Workers, "CASEMETA_SCAN_WORKERS")
	setEnvFloat64(&cfg.Scan.Rate, "CASEMETA_SCAN_RATE")
	setEnvInt(&cfg.Scan.Burst, "CASEMETA_SCAN_BURST")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CASEMETA_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "CASEMETA_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CASEMETA_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "CASEMETA_OBSERVABILITY_SERVICE_NAME")

	// Parser
	setEnvInt64(&cfg.Parser.MaxFileSize, "CASEMETA_PARSER_MAX_FILE_SIZE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

// setEnvList reads a comma-separated list.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvInt64(target *int64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = &b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
