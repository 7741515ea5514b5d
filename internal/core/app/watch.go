package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"casemeta/internal/core/errors"
	"casemeta/internal/core/watcher"
)

// Update reports what the watch loop did for one changed file.
type Update struct {
	Path     string
	Removed  bool
	Document json.RawMessage
	Err      error
}

// Watch keeps the result cache current for Python files under roots until
// ctx is done. onUpdate, when set, sees every processed change.
func (a *App) Watch(ctx context.Context, roots []string, onUpdate func(Update)) error {
	w, err := watcher.New(
		a.Config.Watch.Debounce,
		a.Config.Watch.ExcludeDirs,
		a.Config.Watch.ExcludeFiles,
		func(changes []watcher.Change) { a.HandleChanges(ctx, changes, onUpdate) },
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "create watcher")
	}

	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.CodeInternal, "watch roots")
	}

	a.watchMu.Lock()
	if a.activeWatcher != nil {
		a.watchMu.Unlock()
		_ = w.Close()
		return errors.New(errors.CodeValidationError, "watcher already running")
	}
	a.activeWatcher = w
	a.watchMu.Unlock()
	slog.Info("watching for changes", "roots", roots)

	<-ctx.Done()
	a.stopWatcher()
	return nil
}

// HandleChanges re-extracts changed files and forgets removed ones.
func (a *App) HandleChanges(ctx context.Context, changes []watcher.Change, onUpdate func(Update)) {
	for _, change := range changes {
		if ctx.Err() != nil {
			return
		}
		u := Update{Path: change.Path, Removed: change.Removed}
		if change.Removed {
			if err := a.Forget(ctx, change.Path); err != nil {
				slog.Warn("failed to drop cached document", "path", change.Path, "error", err)
			}
			slog.Info("source removed", "path", change.Path)
		} else {
			u.Document, u.Err = a.ExtractFile(ctx, change.Path)
			if u.Err != nil {
				slog.Warn("extraction failed", "path", change.Path, "error", u.Err)
			} else {
				slog.Info("source updated", "path", change.Path)
			}
		}
		if onUpdate != nil {
			onUpdate(u)
		}
	}
}

func (a *App) watching() bool {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	return a.activeWatcher != nil
}

func (a *App) stopWatcher() {
	a.watchMu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.watchMu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
}
