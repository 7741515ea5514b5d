package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casemeta_extract_seconds",
		Help:    "Time spent extracting one source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casemeta_cache_hits_total",
		Help: "Total number of documents served from a cache layer.",
	}, []string{"layer"})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casemeta_cache_misses_total",
		Help: "Total number of documents that had to be extracted.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casemeta_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	TestCasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casemeta_testcases_total",
		Help: "Total number of recognized test case classes seen in extracted documents.",
	})
)

// Outcome labels for ExtractDuration.
const (
	OutcomeOK          = "ok"
	OutcomeSyntaxError = "syntax_error"
	OutcomeFailed      = "failed"
)

// Cache layer labels for CacheHitsTotal.
const (
	LayerMemory = "memory"
	LayerSQLite = "sqlite"
)
