package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"casemeta/internal/core/errors"
	"casemeta/internal/engine/extract"
	"casemeta/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExtractFile returns the JSON document for path, serving it from the memory
// or SQLite cache when the file's modification time is unchanged.
func (a *App) ExtractFile(ctx context.Context, path string) (json.RawMessage, error) {
	ctx, span := observability.Tracer.Start(ctx, "extract.File",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	payload, err := a.extractFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return payload, nil
}

func (a *App) extractFile(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	info, err := os.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingFile(path)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "stat source"), errors.CtxPath, path)
	}
	mtime := info.ModTime()

	if payload, ok := a.lookup(ctx, key, mtime); ok {
		return payload, nil
	}
	observability.CacheMissesTotal.Inc()

	start := time.Now()
	result, err := a.extractor.ExtractFile(ctx, path)
	if err != nil {
		observability.ExtractDuration.WithLabelValues(observability.OutcomeFailed).Observe(time.Since(start).Seconds())
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	outcome := observability.OutcomeOK
	if len(result.Errors) > 0 {
		outcome = observability.OutcomeSyntaxError
	}
	observability.ExtractDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	for _, class := range result.Classes {
		if class.IsTestCase {
			observability.TestCasesTotal.Inc()
		}
	}

	payload, err := extract.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode document")
	}
	// A failed parse is retried on every request rather than remembered.
	if len(result.Errors) == 0 {
		a.remember(ctx, key, mtime, payload)
	}
	return payload, nil
}

func (a *App) lookup(ctx context.Context, key string, mtime time.Time) ([]byte, bool) {
	if a.memory == nil {
		return nil, false
	}
	if doc, ok := a.memory.Get(key); ok && doc.mtime.Equal(mtime) {
		observability.CacheHitsTotal.WithLabelValues(observability.LayerMemory).Inc()
		return doc.payload, true
	}
	if a.store == nil {
		return nil, false
	}
	payload, ok, err := a.store.Get(ctx, key, mtime)
	if err != nil {
		slog.Warn("result cache read failed", "path", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	observability.CacheHitsTotal.WithLabelValues(observability.LayerSQLite).Inc()
	a.memory.Add(key, cachedDocument{mtime: mtime, payload: payload})
	return payload, true
}

func (a *App) remember(ctx context.Context, key string, mtime time.Time, payload []byte) {
	if a.memory == nil {
		return
	}
	a.memory.Add(key, cachedDocument{mtime: mtime, payload: payload})
	if a.store == nil {
		return
	}
	if err := a.store.Put(ctx, key, mtime, payload); err != nil {
		slog.Warn("result cache write failed", "path", key, "error", err)
	}
}

// Forget drops any cached document for path.
func (a *App) Forget(ctx context.Context, path string) error {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if a.memory != nil {
		a.memory.Remove(key)
	}
	if a.store == nil {
		return nil
	}
	return a.store.Delete(ctx, key)
}
