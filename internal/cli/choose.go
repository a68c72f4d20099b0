package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// NewChooseCommand creates the choose command.
func NewChooseCommand(rootOpts *RootOptions) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "choose <character-id> [selection-path] [value]",
		Short: "List or resolve pending selections",
		Long: `With only a character id, list pending selections and their options.

With a selection path and value, persist the choice and rebuild. With
--clear and a path, remove the stored choice; the originating select
operation reverts to pending on the next pass.`,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 1:
				return runChooseList(rootOpts, args[0], cmd)
			case 2:
				if !clear {
					return NewExitError(ExitCommandError, "a value is required unless --clear is set")
				}
				return runChooseSet(rootOpts, args[0], args[1], "", cmd)
			default:
				return runChooseSet(rootOpts, args[0], args[1], args[2], cmd)
			}
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "remove the stored choice at the given path")

	return cmd
}

func runChooseList(opts *RootOptions, charID string, cmd *cobra.Command) error {
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
	result, _ := buildUntilSettled(vars, work, pkg)

	pending := result.Pending()
	if formatter.Format == "json" {
		return formatter.Success(pending)
	}

	if len(pending) == 0 {
		fmt.Fprintln(formatter.Writer, "No pending selections")
		return nil
	}
	for _, op := range pending {
		fmt.Fprintf(formatter.Writer, "%s\n", op.SelectionPath)
		if op.Reason != "" {
			fmt.Fprintf(formatter.Writer, "  %s\n", op.Reason)
		}
		for _, opt := range op.Options {
			fmt.Fprintf(formatter.Writer, "  - %s (%s)\n", opt.Key, opt.Label)
		}
	}
	return nil
}

func runChooseSet(opts *RootOptions, charID, path, value string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

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

	ch.SetSelection(path, value)
	if err := st.SaveCharacter(ctx, ch); err != nil {
		_ = formatter.Error("E102", err.Error(), nil)
		return WrapExitError(ExitCommandError, "persist character", err)
	}

	if value == "" {
		formatter.VerboseLog("Cleared selection %s", path)
	} else {
		formatter.VerboseLog("Set selection %s = %s", path, value)
	}

	// Rebuild so the choice takes effect immediately.
	return runBuild(opts, charID, false, cmd)
}
