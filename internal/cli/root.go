// Package cli implements the wg command line interface: content
// validation, character management, evaluation passes, and compiled
// sheet inspection.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string // character database
	Content string // content package directory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wg CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wg",
		Short: "wg - character build engine",
		Long:  "Evaluates declarative content operations into compiled character sheets.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", defaultDBPath(), "character database path")
	cmd.PersistentFlags().StringVar(&opts.Content, "content", "content", "content package directory")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewSheetCommand(opts))
	cmd.AddCommand(NewBreakdownCommand(opts))
	cmd.AddCommand(NewChooseCommand(opts))
	cmd.AddCommand(NewCharacterCommand(opts))

	return cmd
}

func defaultDBPath() string {
	if v := os.Getenv("WG_DB"); v != "" {
		return v
	}
	return "wg.db"
}
