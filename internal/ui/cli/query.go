package cli

import (
	"fmt"
	"strings"

	"casemeta/internal/core/errors"

	"github.com/spf13/cobra"
)

func newQueryCommand(rt *runtime) *cobra.Command {
	var (
		classes   bool
		functions bool
	)

	cmd := &cobra.Command{
		Use:   "query <file> [name]",
		Short: "Look up docstrings and names in a Python file",
		Long: "Without flags, query prints the docstring of [name]: a class, a top-level function,\n" +
			"Class.method, or the module itself when [name] is omitted.\n" +
			"--classes lists class names; --functions lists top-level functions, or the methods of\n" +
			"the class given as [name].",
		Args: argRange(1, 2, "a Python file path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if classes && functions {
				return errors.Usage("--classes and --functions cannot be combined")
			}
			name := ""
			if len(args) > 1 {
				name = args[1]
			}

			a, cleanup, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var lines []string
			switch {
			case classes:
				lines, err = a.ClassNames(cmd.Context(), args[0])
			case functions:
				lines, err = a.FunctionNames(cmd.Context(), args[0], name)
			default:
				var doc string
				doc, err = a.Docstring(cmd.Context(), args[0], name)
				lines = []string{doc}
			}
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(rt.stdout, strings.Join(lines, "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&classes, "classes", false, "List class names")
	cmd.Flags().BoolVar(&functions, "functions", false, "List function names (methods of [name] when given)")
	return cmd
}
