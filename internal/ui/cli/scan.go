package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"casemeta/internal/core/app"
	"casemeta/internal/core/errors"
	"casemeta/internal/ui/report"

	"github.com/spf13/cobra"
)

func newScanCommand(rt *runtime) *cobra.Command {
	var (
		summary bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Extract every Python file under a directory",
		Long: "scan prints a JSON object mapping each file path, relative to <dir>, to its document.\n" +
			"Files that fail are reported on stderr and make the command exit non-zero.",
		Args: argRange(1, 1, "a directory is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if summary {
				s, err := app.Summarize(result)
				if err != nil {
					return err
				}
				if err := report.WriteSummary(rt.stdout, s); err != nil {
					return err
				}
			} else {
				payload, err := encodeDocuments(result.Documents())
				if err != nil {
					return err
				}
				if err := rt.emit(payload, output); err != nil {
					return err
				}
			}

			failures := result.Failures()
			for _, f := range failures {
				fmt.Fprintf(rt.stderr, "failed: %s: %v\n", f.Path, f.Err)
			}
			if len(failures) > 0 {
				return errors.New(errors.CodeValidationError, fmt.Sprintf("%d of %d files failed", len(failures), len(result.Files)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print a table of counts instead of documents")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the documents to this file instead of stdout")
	return cmd
}

func encodeDocuments(docs map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(docs); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode documents")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
