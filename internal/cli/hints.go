package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/IgorHorta/acparser/internal/engine"
	"github.com/IgorHorta/acparser/internal/source"
)

// hintWrapWidth is the column width hint descriptions are wrapped to.
const hintWrapWidth = 64

// HintsOptions holds flags for the hints command.
type HintsOptions struct {
	*RootOptions
	Lines string // "a:b[,c:d]", 1-based and inclusive
}

// HintEntry is one hint in command output.
type HintEntry struct {
	Line        int    `json:"line"`  // 1-based
	Begin       int    `json:"begin"` // 1-based, inclusive
	End         int    `json:"end"`   // 1-based, inclusive
	Field       string `json:"field"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// NewHintsCommand creates the hints command.
func NewHintsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HintsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hints <file>",
		Short: "Describe the fields of selected lines",
		Long: `Describe every field of the selected lines with its column span.

Lines whose record type cannot be determined are skipped. Hints never fail
on invalid content; use validate for that.

Ranges are 1-based and inclusive. A single number selects one line.
Without --lines every line of the file is described.

Examples:
  acparser hints extrato.txt --lines 1
  acparser hints extrato.txt --lines 1:3,10:12
  acparser hints extrato.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHints(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lines, "lines", "", "line ranges, e.g. 1:3,10:12")

	return cmd
}

func runHints(opts *HintsOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, err := ResolveLayout(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	doc, err := source.Open(path)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeReadFailed, Message: err.Error()})
	}

	ranges := []engine.LineRange{{Start: 0, End: doc.LineCount()}}
	if opts.Lines != "" {
		if ranges, err = ParseLineRanges(opts.Lines); err != nil {
			return outputCommandError(formatter, err)
		}
	}

	validator := engine.New(reg, engine.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	hints, _ := validator.ResolveHints(engine.NewScanState(), doc, ranges)

	entries := make([]HintEntry, 0, len(hints))
	for _, h := range hints {
		entries = append(entries, HintEntry{
			Line:        h.Address.Line + 1,
			Begin:       h.Address.Start + 1,
			End:         h.Address.End,
			Field:       h.Field,
			Description: h.Description,
			Message:     h.Message(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: entries})
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No hints.")
		return nil
	}
	line := 0
	for _, e := range entries {
		if e.Line != line {
			if line != 0 {
				fmt.Fprintln(w)
			}
			line = e.Line
			fmt.Fprintf(w, "line %d\n", line)
		}
		fmt.Fprintf(w, "  %3d-%-3d  %s\n", e.Begin, e.End, e.Field)
		if e.Description != "" {
			fmt.Fprintln(w, indent.String(wordwrap.String(e.Description, hintWrapWidth), 11))
		}
	}
	return nil
}

// ParseLineRanges parses "a:b[,c:d]" with 1-based inclusive bounds into
// half-open, 0-based line ranges. "a" alone selects line a.
func ParseLineRanges(s string) ([]engine.LineRange, error) {
	var ranges []engine.LineRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, found := strings.Cut(part, ":")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil || first < 1 {
			return nil, invalidRange(part)
		}
		last := first
		if found {
			if last, err = strconv.Atoi(strings.TrimSpace(to)); err != nil || last < first {
				return nil, invalidRange(part)
			}
		}
		ranges = append(ranges, engine.LineRange{Start: first - 1, End: last})
	}
	if len(ranges) == 0 {
		return nil, invalidRange(s)
	}
	return ranges, nil
}

func invalidRange(part string) *LoadError {
	return &LoadError{Code: ErrCodeInvalidRange, Message: fmt.Sprintf("invalid line range %q: want N or N:M with 1 <= N <= M", part)}
}
