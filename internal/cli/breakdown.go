package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/breakdown"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// NewBreakdownCommand creates the breakdown command.
func NewBreakdownCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown <character-id> <variable>",
		Short: "Explain one variable's compiled value",
		Long: `Show every term, bonus, and historical change behind a variable.

Proficiency variables get the full rank/level/attribute decomposition;
everything else gets its stacked bonuses and change timeline.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreakdown(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

// VariableBreakdown is the generic (non-proficiency) explanation.
type VariableBreakdown struct {
	Variable string                    `json:"variable"`
	Value    string                    `json:"value"`
	Bonuses  breakdown.Stacked         `json:"bonuses"`
	Timeline []breakdown.TimelineEntry `json:"timeline,omitempty"`
}

func runBreakdown(opts *RootOptions, charID, variable string, cmd *cobra.Command) error {
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

	work := ch.Clone()
	vars := varstore.New()
	buildUntilSettled(vars, work, pkg)
	id := varstore.StoreID(work.ID)

	// Proficiency variables get the richer view.
	if pb, ok := breakdown.Proficiency(vars, id, variable); ok {
		return outputProficiency(formatter, pb)
	}

	v, ok := vars.Get(id, variable)
	if !ok {
		_ = formatter.Error("E104", fmt.Sprintf("variable %q not set", variable), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("variable %q not set", variable))
	}

	out := VariableBreakdown{
		Variable: variable,
		Value:    v.Value.String(),
		Bonuses:  breakdown.Stack(vars.Bonuses(id, variable)),
		Timeline: breakdown.Timeline(vars.History(id, variable), vars.Bonuses(id, variable)),
	}
	return outputVariable(formatter, out)
}

func outputProficiency(f *OutputFormatter, pb breakdown.ProficiencyBreakdown) error {
	if f.Format == "json" {
		return f.Success(pb)
	}

	fmt.Fprintf(f.Writer, "%s = %+d\n", pb.Variable, pb.Total)
	for _, t := range pb.Terms {
		fmt.Fprintf(f.Writer, "  %+d  %s\n", t.Amount, t.Label)
	}
	printStacked(f, pb.Bonuses)
	printTimeline(f, pb.Timeline)
	return nil
}

func outputVariable(f *OutputFormatter, vb VariableBreakdown) error {
	if f.Format == "json" {
		return f.Success(vb)
	}

	fmt.Fprintf(f.Writer, "%s = %s\n", vb.Variable, vb.Value)
	printStacked(f, vb.Bonuses)
	printTimeline(f, vb.Timeline)
	return nil
}

func printStacked(f *OutputFormatter, st breakdown.Stacked) {
	for _, g := range st.Groups {
		fmt.Fprintf(f.Writer, "  %+d  %s (%s)\n", g.Applied.Amount, g.Applied.Source, g.Type)
		for _, ig := range g.Ignored {
			fmt.Fprintf(f.Writer, "  ---  %+d  %s (%s, outstacked)\n", ig.Amount, ig.Source, g.Type)
		}
	}
	for _, b := range st.Untyped {
		fmt.Fprintf(f.Writer, "  %+d  %s (%s)\n", b.Amount, b.Source, rules.BonusTypeUntyped)
	}
	for _, b := range st.Conditionals {
		fmt.Fprintf(f.Writer, "  ...  %+d  %s when %s\n", b.Amount, b.Source, b.Text)
	}
}

func printTimeline(f *OutputFormatter, entries []breakdown.TimelineEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(f.Writer)
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "  [%d] %s: %s\n", e.Timestamp, e.Source, e.Detail)
	}
}
