package app

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"casemeta/internal/core/errors"
	"casemeta/internal/shared/observability"
	"casemeta/internal/shared/util"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FileReport is the outcome for one scanned file. Exactly one of Document
// and Err is set.
type FileReport struct {
	Path     string
	Document json.RawMessage
	Err      error
}

// ScanReport collects every file found under Root, sorted by Path.
type ScanReport struct {
	RunID    string
	Root     string
	Files    []FileReport
	Duration time.Duration
}

// Documents maps relative paths to documents for the files that extracted.
func (r *ScanReport) Documents() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(r.Files))
	for _, f := range r.Files {
		if f.Err == nil {
			out[f.Path] = f.Document
		}
	}
	return out
}

// Failures returns the files whose extraction aborted.
func (r *ScanReport) Failures() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Discover lists the files under root that match the include patterns and
// none of the exclude patterns, as sorted absolute paths.
func (a *App) Discover(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "resolve scan root"), errors.CtxPath, root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingFile(root)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "stat scan root"), errors.CtxPath, root)
	}
	if !info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "scan root is not a directory"), errors.CtxPath, root)
	}

	include := a.Config.Scan.Include
	exclude := a.Config.Scan.Exclude

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		rel := util.RelPattern(absRoot, path)
		if rel == "" {
			return nil
		}
		if matchAny(exclude, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchAny(include, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk scan root"), errors.CtxPath, root)
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Scan extracts every discovered file under root with a bounded worker pool.
// A file that fails is recorded in its FileReport; only cancellation aborts
// the scan as a whole.
func (a *App) Scan(ctx context.Context, root string) (*ScanReport, error) {
	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Scan",
		trace.WithAttributes(attribute.String("root", root), attribute.String("run_id", runID)))
	defer span.End()

	start := time.Now()
	paths, err := a.Discover(root)
	if err != nil {
		return nil, err
	}
	absRoot, _ := filepath.Abs(root)
	slog.Info("scan started", "run_id", runID, "root", absRoot, "files", len(paths))

	report := &ScanReport{RunID: runID, Root: absRoot, Files: make([]FileReport, len(paths))}
	limiter := util.NewLimiter(a.Config.Scan.Rate, a.Config.Scan.Burst)

	g, gctx := errgroup.WithContext(ctx)
	if a.Config.Scan.Workers > 0 {
		g.SetLimit(a.Config.Scan.Workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			doc, err := a.ExtractFile(gctx, path)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			report.Files[i] = FileReport{Path: util.RelPattern(absRoot, path), Document: doc, Err: err}
			if err != nil {
				slog.Warn("extraction failed", "path", path, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scan cancelled")
	}

	a.pruneCache(ctx)
	report.Duration = time.Since(start)
	slog.Info("scan finished", "run_id", runID, "files", len(paths), "failed", len(report.Failures()), "duration", report.Duration)
	return report, nil
}

// pruneCache drops cached documents for files that no longer exist.
func (a *App) pruneCache(ctx context.Context) {
	if a.store == nil {
		return
	}
	removed, err := a.store.Prune(ctx, func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if err != nil {
		slog.Warn("result cache prune failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Debug("pruned result cache", "removed", removed)
	}
}
