package cli

import (
	"fmt"
	"io"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/IgorHorta/acparser/internal/layout"
)

// LayoutSummary is one row of the layouts listing.
type LayoutSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	MaxLineLength int      `json:"max_line_length"`
	Codes         []string `json:"codes"`
	Hash          string   `json:"hash"`
}

// LayoutDetail describes one layout with its record types.
type LayoutDetail struct {
	LayoutSummary
	Records []*layout.RecordType `json:"records"`
}

// NewLayoutsCommand creates the layouts command.
func NewLayoutsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts [id]",
		Short: "List layouts or describe one",
		Long: `List the available layouts, built-in and from --layouts-dir, or
describe the record types and fields of one layout.

Examples:
  acparser layouts
  acparser layouts cielo
  acparser layouts --layouts-dir ./layouts --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayouts(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runLayouts(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	regs, err := AvailableLayouts(opts)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	if len(args) == 0 {
		summaries := make([]LayoutSummary, 0, len(regs))
		for _, reg := range regs {
			s, err := summarize(reg)
			if err != nil {
				return outputCommandError(formatter, err)
			}
			summaries = append(summaries, s)
		}
		if formatter.Format == "json" {
			return formatter.Encode(CLIResponse{Status: "ok", Data: summaries})
		}
		for _, s := range summaries {
			fmt.Fprintf(formatter.Writer, "%-12s %s v%s  %d cols  records %v\n", s.ID, s.Name, s.Version, s.MaxLineLength, s.Codes)
		}
		return nil
	}

	for _, reg := range regs {
		if reg.ID != args[0] {
			continue
		}
		s, err := summarize(reg)
		if err != nil {
			return outputCommandError(formatter, err)
		}
		detail := LayoutDetail{LayoutSummary: s, Records: reg.RecordTypes()}
		if formatter.Format == "json" {
			return formatter.Encode(CLIResponse{Status: "ok", Data: detail})
		}
		writeLayoutDetail(formatter.Writer, detail)
		return nil
	}

	return outputCommandError(formatter, &LoadError{Code: ErrCodeUnknownLayout, Message: fmt.Sprintf("unknown layout %q", args[0])})
}

func summarize(reg *layout.Registry) (LayoutSummary, error) {
	hash, err := layout.Hash(reg)
	if err != nil {
		return LayoutSummary{}, err
	}
	return LayoutSummary{
		ID:            reg.ID,
		Name:          reg.Name,
		Version:       reg.Version,
		MaxLineLength: reg.MaxLineLength,
		Codes:         reg.Codes(),
		Hash:          hash,
	}, nil
}

func writeLayoutDetail(w io.Writer, d LayoutDetail) {
	fmt.Fprintf(w, "%s (%s v%s)\n", d.Name, d.ID, d.Version)
	fmt.Fprintf(w, "max line length: %d\n", d.MaxLineLength)
	fmt.Fprintf(w, "hash: %s\n", d.Hash)

	for _, rt := range d.Records {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%s] %s, %d cols\n", rt.Code, rt.Name, rt.LineLength)
		if rt.Description != "" {
			fmt.Fprintln(w, indent.String(wordwrap.String(rt.Description, 72), 2))
		}
		for _, f := range rt.Fields {
			rule := "-"
			if f.Rule != nil {
				rule = f.Rule.String()
			}
			fmt.Fprintf(w, "  %3d-%-3d  %-40s %s\n", f.Begin, f.End, f.Name, rule)
		}
	}
}
