package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IgorHorta/acparser/internal/acquirers"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Layout     string // layout ID
	LayoutsDir string // extra CUE layouts, merged over the built-in ones
	DB         string // SQLite store path; empty selects the default location
	Config     string // config file; empty searches $HOME/.acparser.yaml

	// ConfigUsed is the config file that was read, if any.
	ConfigUsed string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// envPrefix namespaces environment overrides (ACPARSER_LAYOUT, ACPARSER_DB, ...).
const envPrefix = "ACPARSER"

// NewRootCommand creates the root command for the acparser CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "acparser",
		Short: "acparser - acquirer settlement file validator",
		Long: `acparser validates fixed-width acquirer settlement files against
declarative record layouts.

Each line is classified by its first character, checked for length and
then field by field. A scan stops at the first violation and remembers
where it stopped, so the next run resumes with the following line.

Getting started:
  acparser validate extrato.txt          Scan a file (resumes where it stopped)
  acparser validate --reset extrato.txt  Scan from the first line
  acparser hints extrato.txt --lines 1:3 Describe the fields of lines 1-3
  acparser layouts cielo                 Describe the built-in Cielo layout
  acparser history extrato.txt           List logged scan runs

Configuration is read from $HOME/.acparser.yaml (or --config) and from
ACPARSER_* environment variables; flags take precedence.`,
		SilenceErrors: true, // main prints the error once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, opts); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Layout, "layout", acquirers.DefaultLayout, "layout ID")
	flags.StringVar(&opts.LayoutsDir, "layouts-dir", "", "directory of additional CUE layouts")
	flags.StringVar(&opts.DB, "db", "", "cursor and run log database (default is the user config dir)")
	flags.StringVar(&opts.Config, "config", "", "config file (default is $HOME/.acparser.yaml)")

	for _, name := range []string{"verbose", "format", "layout", "layouts-dir", "db"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHintsCommand(opts))
	cmd.AddCommand(NewLayoutsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// initConfig reads the config file and environment into v, then copies the
// resolved values back into opts.
func initConfig(v *viper.Viper, opts *RootOptions) error {
	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".acparser")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the home file is optional.
		if opts.Config != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	opts.ConfigUsed = v.ConfigFileUsed()

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.Layout = v.GetString("layout")
	opts.LayoutsDir = v.GetString("layouts-dir")
	opts.DB = v.GetString("db")
	return nil
}

// Logger returns the logger handed to the engine.
// Debug output goes to w when --verbose is set; otherwise it is discarded.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	if !o.Verbose || w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
