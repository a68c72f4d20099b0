package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
)

// NewCharacterCommand creates the character management command group.
func NewCharacterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Manage stored characters",
	}

	cmd.AddCommand(newCharacterNewCommand(rootOpts))
	cmd.AddCommand(newCharacterListCommand(rootOpts))
	cmd.AddCommand(newCharacterDeleteCommand(rootOpts))

	return cmd
}

func newCharacterNewCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		level      int
		classID    string
		ancestryID string
		background string
		heritageID string
	)

	cmd := &cobra.Command{
		Use:           "new <name>",
		Short:         "Create a character",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			st, err := openStore(rootOpts)
			if err != nil {
				_ = formatter.Error("E100", err.Error(), nil)
				return err
			}
			defer st.Close()

			ch := &entity.Character{
				ID:           uuid.Must(uuid.NewV7()).String(),
				Name:         args[0],
				Level:        level,
				ClassID:      classID,
				AncestryID:   ancestryID,
				BackgroundID: background,
				HeritageID:   heritageID,
			}
			if err := st.SaveCharacter(cmd.Context(), ch); err != nil {
				_ = formatter.Error("E102", err.Error(), nil)
				return WrapExitError(ExitCommandError, "persist character", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(ch)
			}
			fmt.Fprintf(formatter.Writer, "✓ Created %s (%s)\n", ch.Name, ch.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "character level")
	cmd.Flags().StringVar(&classID, "class", "", "class record id")
	cmd.Flags().StringVar(&ancestryID, "ancestry", "", "ancestry record id")
	cmd.Flags().StringVar(&background, "background", "", "background record id")
	cmd.Flags().StringVar(&heritageID, "heritage", "", "heritage record id")

	return cmd
}

func newCharacterListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored characters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			st, err := openStore(rootOpts)
			if err != nil {
				_ = formatter.Error("E100", err.Error(), nil)
				return err
			}
			defer st.Close()

			chars, err := st.ListCharacters(cmd.Context())
			if err != nil {
				_ = formatter.Error("E100", err.Error(), nil)
				return WrapExitError(ExitCommandError, "list characters", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(chars)
			}
			if len(chars) == 0 {
				fmt.Fprintln(formatter.Writer, "No characters")
				return nil
			}
			for _, ch := range chars {
				fmt.Fprintf(formatter.Writer, "%s  %s (level %d)\n", ch.ID, ch.Name, ch.Level)
			}
			return nil
		},
	}
}

func newCharacterDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <character-id>",
		Short:         "Delete a character and its snapshots",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			st, err := openStore(rootOpts)
			if err != nil {
				_ = formatter.Error("E100", err.Error(), nil)
				return err
			}
			defer st.Close()

			if err := st.DeleteCharacter(cmd.Context(), args[0]); err != nil {
				_ = formatter.Error("E100", err.Error(), nil)
				return WrapExitError(ExitCommandError, "delete character", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "✓ Deleted %s\n", args[0])
			return nil
		},
	}
}
