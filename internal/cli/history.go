package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IgorHorta/acparser/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "List logged scan runs of a file",
		Long: `List the validate runs logged for a file, oldest first.

Examples:
  acparser history extrato.txt
  acparser history extrato.txt --limit 5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show only the most recent runs (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), documentKey(path), opts.Limit)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeStore, Message: err.Error()})
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: runs})
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs logged for %s.\n", path)
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "#%-4d %s  %-9s layout %s  lines %d-%d of %d\n",
			run.Seq, run.ID, run.Status, run.Layout, run.StartCursor+1, run.EndCursor, run.LineCount)
		if run.Status == store.StatusViolation && run.Violation != nil {
			fmt.Fprintf(w, "      line %d: %s\n", run.Violation.Line+1, run.Violation.Message)
		}
	}
	return nil
}
