package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/breakdown"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// NewSheetCommand creates the sheet command.
func NewSheetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet <character-id>",
		Short: "Compile and print a character sheet",
		Long: `Evaluate a character in memory and print the compiled sheet.

Nothing is persisted - this is a read-only view of what the current
character record and content produce.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSheet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSheet(opts *RootOptions, charID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pkg, _, err := loadContent(opts, formatter)
	if err != nil {
		_ = formatter.Error(content.ErrSchema, err.Error(), nil)
		return err
	}

	st, err := openStore(opts)
	if err != nil {
		_ = formatter.Error("E100", err.Error(), nil)
		return err
	}
	defer st.Close()

	ch, err := loadCharacter(cmd.Context(), st, charID)
	if err != nil {
		_ = formatter.Error("E101", err.Error(), nil)
		return err
	}

	// Evaluate on a clone so the stored record is untouched.
	work := ch.Clone()
	vars := varstore.New()
	buildUntilSettled(vars, work, pkg)

	sheet := breakdown.CompileSheet(vars, work)
	return outputSheet(formatter, sheet)
}

func outputSheet(f *OutputFormatter, sheet breakdown.Sheet) error {
	if f.Format == "json" {
		return f.Success(sheet)
	}

	fmt.Fprintf(f.Writer, "%s (level %d)\n", sheet.Name, sheet.Level)
	fmt.Fprintf(f.Writer, "HP %d/%d   AC %d   Speed %d\n",
		sheet.HPCurrent, sheet.HP.Total, sheet.AC.Total, sheet.Speed.Total)
	if sheet.Encumbered {
		fmt.Fprintln(f.Writer, "Encumbered")
	}

	fmt.Fprintln(f.Writer)
	for _, a := range sheet.Attributes {
		partial := ""
		if a.Partial {
			partial = " (partial)"
		}
		fmt.Fprintf(f.Writer, "%-16s %+d%s\n", a.Variable, a.Score, partial)
	}

	if len(sheet.Saves) > 0 {
		fmt.Fprintln(f.Writer)
		for _, s := range sheet.Saves {
			fmt.Fprintf(f.Writer, "%-24s %+d (%s)\n", s.Variable, s.Total, s.RankName)
		}
	}
	if len(sheet.Skills) > 0 {
		fmt.Fprintln(f.Writer)
		for _, s := range sheet.Skills {
			fmt.Fprintf(f.Writer, "%-24s %+d (%s)\n", s.Variable, s.Total, s.RankName)
		}
	}
	if len(sheet.Languages) > 0 {
		fmt.Fprintln(f.Writer)
		fmt.Fprintf(f.Writer, "Languages: %v\n", sheet.Languages)
	}
	return nil
}
