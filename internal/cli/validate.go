package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/IgorHorta/acparser/internal/engine"
	"github.com/IgorHorta/acparser/internal/layout"
	"github.com/IgorHorta/acparser/internal/source"
	"github.com/IgorHorta/acparser/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Reset   bool // rewind the persisted cursor before scanning
	NoStore bool // scan with a fresh in-memory cursor and log nothing
	Context int  // snippet columns around the violation
}

// ValidationResult is the outcome of one validate invocation.
type ValidationResult struct {
	Document    string            `json:"document"`
	Layout      string            `json:"layout"`
	Valid       bool              `json:"valid"`
	StartCursor int               `json:"start_cursor"`
	Cursor      int               `json:"cursor"`
	LineCount   int               `json:"line_count"`
	Violation   *engine.Violation `json:"violation,omitempty"`
	RunID       string            `json:"run_id,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Scan a settlement file against its layout",
		Long: `Scan a settlement file line by line and stop at the first violation.

The scan position is persisted per file and layout. A run that stops at a
violation leaves the cursor on the following line, so fixing the file and
running again continues from there. A cursor saved under a different
revision of the layout is discarded.

Exit codes:
  0 - No violation
  1 - Violation found
  2 - Command error (unreadable file, unknown layout, store error)

Examples:
  acparser validate extrato.txt
  acparser validate --reset extrato.txt
  acparser validate --no-store --format json extrato.txt
  acparser validate --layout mylayout --layouts-dir ./layouts extrato.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "scan from the first line")
	cmd.Flags().BoolVar(&opts.NoStore, "no-store", false, "do not load or persist the cursor")
	cmd.Flags().IntVar(&opts.Context, "context", DefaultSnippetContext, "columns shown around a violation (0 = whole line)")

	return cmd
}

func runValidate(ctx context.Context, opts *ValidateOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	reg, err := ResolveLayout(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	hash, err := layout.Hash(reg)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	doc, err := source.Open(path)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeReadFailed, Message: err.Error()})
	}
	key := documentKey(path)

	state := engine.NewScanState()

	var st *store.Store
	if !opts.NoStore {
		if st, err = openStore(opts.RootOptions); err != nil {
			return outputCommandError(formatter, err)
		}
		defer st.Close()

		if err := restoreCursor(ctx, st, state, key, reg.ID, hash, doc.LineCount(), opts.Reset, logger); err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
	}

	formatter.VerboseLog("Scanning %s with layout %s from line %d", path, reg.ID, state.Cursor+1)

	start := state.Cursor
	scanErr := engine.New(reg, engine.WithLogger(logger)).ValidateFile(state, doc)
	violation, isViolation := engine.AsViolation(scanErr)
	if scanErr != nil && !isViolation {
		return outputCommandError(formatter, scanErr)
	}

	result := ValidationResult{
		Document:    path,
		Layout:      reg.ID,
		Valid:       violation == nil,
		StartCursor: start,
		Cursor:      state.Cursor,
		LineCount:   doc.LineCount(),
		Violation:   violation,
	}

	if st != nil {
		run, err := st.RecordRun(ctx, store.Run{
			Document:      key,
			Layout:        reg.ID,
			LayoutHash:    hash,
			EngineVersion: layout.EngineVersion,
			StartCursor:   start,
			EndCursor:     state.Cursor,
			LineCount:     doc.LineCount(),
			Violation:     runViolation(violation),
		})
		if err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		result.RunID = run.ID

		if _, err := st.SaveCursor(ctx, store.Cursor{
			Document:   key,
			Layout:     reg.ID,
			LayoutHash: hash,
			Cursor:     state.Cursor,
		}); err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
	}

	return outputValidation(formatter, opts, doc, result)
}

// restoreCursor positions state from the persisted cursor.
//
// The saved cursor is ignored when reset is set, when it was saved under
// another layout hash, or when it points past the end of the document
// (the file was replaced by a shorter one).
func restoreCursor(ctx context.Context, st *store.Store, state *engine.ScanState, document, layoutID, hash string, lineCount int, reset bool, logger *slog.Logger) error {
	if reset {
		logger.Debug("cursor reset", "document", document, "layout", layoutID)
		return st.ResetCursor(ctx, document, layoutID)
	}

	cur, ok, err := st.LoadCursor(ctx, document, layoutID)
	if err != nil || !ok {
		return err
	}

	switch {
	case cur.LayoutHash != hash:
		logger.Info("cursor discarded: layout changed", "document", document, "saved_hash", cur.LayoutHash, "hash", hash)
	case cur.Cursor > lineCount:
		logger.Info("cursor discarded: past end of document", "document", document, "cursor", cur.Cursor, "lines", lineCount)
	default:
		state.Cursor = cur.Cursor
	}
	return nil
}

// runViolation converts an engine violation for the run log.
func runViolation(v *engine.Violation) *store.RunViolation {
	if v == nil {
		return nil
	}
	return &store.RunViolation{
		Kind:    string(v.Kind),
		Message: v.Message,
		Line:    v.Address.Line,
		Start:   v.Address.Start,
		End:     v.Address.End,
		Field:   v.Field,
	}
}

// outputValidation writes the scan outcome.
func outputValidation(formatter *OutputFormatter, opts *ValidateOptions, doc *source.Document, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if !result.Valid {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    string(result.Violation.Kind),
				Message: result.Violation.Message,
			}
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Valid {
			if result.StartCursor > 0 && result.StartCursor < result.LineCount {
				fmt.Fprintf(w, "✓ %s: lines %d-%d valid (layout %s)\n", result.Document, result.StartCursor+1, result.LineCount, result.Layout)
			} else {
				fmt.Fprintf(w, "✓ %s valid (layout %s)\n", result.Document, result.Layout)
			}
		} else {
			fmt.Fprintf(w, "✗ %s\n", result.Document)
			fmt.Fprintln(w)
			v := result.Violation
			renderer := &SnippetRenderer{Context: opts.Context}
			if err := renderer.Render(w, result.Document, doc.LineAt(v.Address.Line).Text, v); err != nil {
				return err
			}
			if result.Cursor < result.LineCount && !opts.NoStore {
				fmt.Fprintf(w, "\nNext run resumes at line %d (use --reset to rescan)\n", result.Cursor+1)
			}
		}
	}

	if !result.Valid {
		// Violations = exit code 1 (validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed at line %d", result.Violation.Address.Line+1))
	}
	return nil
}

// outputCommandError reports a load, read or store failure.
func outputCommandError(formatter *OutputFormatter, err error) error {
	code, message := loadErrorCode(err)
	_ = formatter.Error(code, message, nil)
	// Command errors = exit code 2
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
