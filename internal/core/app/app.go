package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"casemeta/internal/core/config"
	"casemeta/internal/core/errors"
	"casemeta/internal/core/watcher"
	"casemeta/internal/data/cache"
	"casemeta/internal/engine/extract"
	"casemeta/internal/engine/parser"

	lru "github.com/hashicorp/golang-lru/v2"
)

// App owns the extractor and the two result cache layers shared by the
// extract, scan, query and watch commands.
type App struct {
	Config *config.Config

	parser    *parser.Parser
	extractor *extract.Extractor
	store     *cache.Store
	memory    *lru.Cache[string, cachedDocument]

	watchMu       sync.Mutex
	activeWatcher *watcher.Watcher
}

type cachedDocument struct {
	mtime   time.Time
	payload []byte
}

// New builds an App from a finalized configuration. When the cache is
// enabled the SQLite store is opened (and migrated) immediately.
// A store that cannot be opened is logged and skipped.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}

	p := parser.New(parser.WithMaxFileSize(cfg.Parser.MaxFileSize))
	a := &App{
		Config:    cfg,
		parser:    p,
		extractor: extract.New(p),
	}
	if !cfg.CacheEnabled() {
		return a, nil
	}

	memory, err := lru.New[string, cachedDocument](cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "create memory cache")
	}
	a.memory = memory

	// An unusable store degrades to the memory layer; extraction never depends on it.
	store, err := cache.Open(cfg.Cache.Path, extract.FormatVersion)
	if err != nil {
		slog.Warn("result cache unavailable, continuing without it", "path", cfg.Cache.Path, "error", err)
		return a, nil
	}
	a.store = store
	return a, nil
}

// Close stops a running watcher and closes the result cache.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.stopWatcher()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
