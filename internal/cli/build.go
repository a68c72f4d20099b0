package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/eval"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/postprocess"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// maxBuildPasses bounds re-evaluation when the post-processing pipeline
// keeps mutating the entity (equipment penalties arriving, granted gear
// changing bulk). Two passes settle every legitimate build; the bound
// exists for broken content.
const maxBuildPasses = 4

// BuildResult summarizes one build for output.
type BuildResult struct {
	CharacterID string                  `json:"character_id"`
	PassToken   string                  `json:"pass_token"`
	Passes      int                     `json:"passes"`
	Pending     []eval.OperationOutcome `json:"pending,omitempty"`
	Skipped     []eval.OperationOutcome `json:"skipped,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "build <character-id>",
		Short: "Run an evaluation pass and persist the result",
		Long: `Rebuild a character's derived state from content operations.

Runs evaluation passes until the entity settles, applies post
processing, and persists the updated character and a snapshot of the
settled variable state. Pending selections are reported, not errors -
use 'wg choose' to resolve them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, args[0], strict, cmd)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when selections are pending")

	return cmd
}

func runBuild(opts *RootOptions, charID string, strict bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	pkg, semantic, err := loadContent(opts, formatter)
	if err != nil {
		_ = formatter.Error(content.ErrSchema, err.Error(), nil)
		return err
	}
	for _, e := range semantic {
		formatter.VerboseLog("content warning: %s", e.Error())
	}

	st, err := openStore(opts)
	if err != nil {
		_ = formatter.Error("E100", err.Error(), nil)
		return err
	}
	defer st.Close()

	ch, err := loadCharacter(ctx, st, charID)
	if err != nil {
		_ = formatter.Error("E101", err.Error(), nil)
		return err
	}

	vars := varstore.New()
	result, passes := buildUntilSettled(vars, ch, pkg)

	if err := st.SaveCharacter(ctx, ch); err != nil {
		_ = formatter.Error("E102", err.Error(), nil)
		return WrapExitError(ExitCommandError, "persist character", err)
	}
	if _, err := st.SaveSnapshot(ctx, ch.ID, result.PassToken, vars.Snapshot(varstore.StoreID(ch.ID))); err != nil {
		_ = formatter.Error("E103", err.Error(), nil)
		return WrapExitError(ExitCommandError, "persist snapshot", err)
	}

	out := BuildResult{
		CharacterID: ch.ID,
		PassToken:   result.PassToken,
		Passes:      passes,
		Pending:     result.Pending(),
		Skipped:     result.Skipped(),
	}

	if err := outputBuild(formatter, out); err != nil {
		return err
	}
	if strict && len(out.Pending) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d selection(s) pending", len(out.Pending)))
	}
	return nil
}

// buildUntilSettled alternates evaluation and post-processing until the
// entity stops changing or the pass bound is hit.
func buildUntilSettled(vars *varstore.Store, ch *entity.Character, pkg *content.Package) (*eval.Result, int) {
	ev := eval.New(vars)
	id := varstore.StoreID(ch.ID)

	var result *eval.Result
	passes := 0
	for {
		result = ev.Pass(id, ch, pkg)
		passes++
		if !postprocess.Run(vars, id, ch, pkg) || passes >= maxBuildPasses {
			return result, passes
		}
	}
}

func outputBuild(f *OutputFormatter, out BuildResult) error {
	if f.Format == "json" {
		return f.Success(out)
	}

	fmt.Fprintf(f.Writer, "✓ Built %s in %d pass(es) (token %s)\n", out.CharacterID, out.Passes, out.PassToken)
	if len(out.Skipped) > 0 {
		fmt.Fprintf(f.Writer, "  %d operation(s) skipped\n", len(out.Skipped))
		if f.Verbose {
			for _, op := range out.Skipped {
				fmt.Fprintf(f.Writer, "    %s (%s): %s\n", op.OperationID, op.Kind, op.Reason)
			}
		}
	}
	if len(out.Pending) > 0 {
		fmt.Fprintf(f.Writer, "  %d selection(s) pending:\n", len(out.Pending))
		for _, op := range out.Pending {
			fmt.Fprintf(f.Writer, "    %s\n", op.SelectionPath)
			for _, opt := range op.Options {
				fmt.Fprintf(f.Writer, "      - %s (%s)\n", opt.Key, opt.Label)
			}
		}
	}
	return nil
}
