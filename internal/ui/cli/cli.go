package cli

import (
	"context"
	"fmt"
	"io"

	"casemeta/internal/core/errors"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

type runtime struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	verbose    bool
}

// Run executes the command line and returns the process exit status:
// 0 on success, 2 for usage errors and 1 for any other failure.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rt := &runtime{stdout: stdout, stderr: stderr}
	root := newRootCommand(rt)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = root
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	if errors.IsCode(err, errors.CodeUsage) {
		fmt.Fprint(stderr, cmd.UsageString())
		return 2
	}
	return 1
}

func newRootCommand(rt *runtime) *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:   "casemeta <file>",
		Short: "Extract test case metadata from a Python UI test module",
		Long: "casemeta reads a Python test module without running it and prints a JSON document\n" +
			"describing its classes, locators, steps and docstrings.\n\n" +
			"A file named like a subcommand (scan, watch, query, version) is extracted with\n" +
			"`casemeta -- <file>` or by giving a path such as ./scan.",
		Example: "  casemeta tests/login_case.py\n" +
			"  casemeta -- scan",
		Args:          argRange(1, 1, "a Python file path is required"),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := a.ExtractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(doc, output)
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "Path to config file (default ./casemeta.toml when present)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")
	root.Flags().StringVarP(&output, "output", "o", "", "Write the document to this file instead of stdout")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Usage(err.Error())
	})

	root.AddCommand(
		newScanCommand(rt),
		newWatchCommand(rt),
		newQueryCommand(rt),
		newVersionCommand(rt),
	)
	return root
}

func argRange(min, max int, missing string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.Usage(missing)
		}
		if max >= 0 && len(args) > max {
			return errors.Usage(fmt.Sprintf("%s accepts at most %d argument(s), got %d", cmd.Name(), max, len(args)))
		}
		return nil
	}
}

func newVersionCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  argRange(0, 0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(rt.stdout, "casemeta v%s (document format %d)\n", versionString, documentFormat)
			return err
		},
	}
}
