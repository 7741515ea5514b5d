package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casemeta/internal/core/app"
	"casemeta/internal/core/errors"

	"github.com/spf13/cobra"
)

func newWatchCommand(rt *runtime) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Keep the result cache current while files change",
		Args:  argRange(1, -1, "at least one directory is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if metricsAddr == "" {
				metricsAddr = a.Config.Observability.MetricsAddr
			}
			if metricsAddr != "" {
				server := NewObservabilityServer(metricsAddr, app.NewHealthService(a))
				if err := server.Start(ctx); err != nil {
					return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "start observability server"), "addr", metricsAddr)
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Stop(shutdownCtx)
				}()
			}

			for _, root := range args {
				if _, err := a.Scan(ctx, root); err != nil {
					return err
				}
			}
			return a.Watch(ctx, args, func(u app.Update) {
				switch {
				case u.Removed:
					fmt.Fprintf(rt.stdout, "removed %s\n", u.Path)
				case u.Err != nil:
					fmt.Fprintf(rt.stdout, "failed  %s: %v\n", u.Path, u.Err)
				default:
					fmt.Fprintf(rt.stdout, "updated %s\n", u.Path)
				}
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides config)")
	return cmd
}
