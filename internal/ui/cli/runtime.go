package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"casemeta/internal/core/app"
	"casemeta/internal/core/config"
	"casemeta/internal/core/errors"
	"casemeta/internal/engine/extract"
	"casemeta/internal/shared/observability"
	"casemeta/internal/shared/util"
)

const documentFormat = extract.FormatVersion

func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (rt *runtime) loadConfig() (*config.Config, error) {
	path, explicit := rt.configPath, rt.configPath != ""
	if !explicit {
		path = config.DefaultFile
	}
	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "load config"), errors.CtxPath, path)
	}
	return cfg, nil
}

// open configures logging and tracing and builds the App. The returned
// cleanup flushes spans and closes the cache.
func (rt *runtime) open(ctx context.Context) (*app.App, func(), error) {
	configureLogging(rt.stderr, rt.verbose)

	cfg, err := rt.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "set up tracing")
	}

	a, err := app.New(cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			slog.Warn("failed to close app", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}
	return a, cleanup, nil
}

// emit writes a JSON payload followed by a newline to path, or to stdout
// when path is empty.
func (rt *runtime) emit(payload []byte, path string) error {
	data := append(append([]byte(nil), payload...), '\n')
	if path == "" {
		_, err := rt.stdout.Write(data)
		return err
	}
	if err := util.WriteFileWithDirs(path, data, 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write output"), errors.CtxPath, path)
	}
	return nil
}
