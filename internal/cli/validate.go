package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
)

// ValidationResult holds content validation results.
type ValidationResult struct {
	Valid   bool                      `json:"valid"`
	Records int                       `json:"records"`
	Errors  []content.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [content-dir]",
		Short: "Validate content records without evaluating anything",
		Long: `Validate content YAML against the schema and semantic rules.

Checks record shape, duplicate ids, operation kinds and payloads,
select option keys, and ability grant targets. Reports every problem
found rather than stopping at the first.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rootOpts.Content = args[0]
			}
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pkg, semantic, err := loadContent(opts, formatter)
	if err != nil {
		_ = formatter.Error(content.ErrSchema, err.Error(), nil)
		return err
	}

	if len(semantic) > 0 {
		return outputValidationErrors(formatter, pkg.Size(), semantic)
	}
	return outputValidateSuccess(formatter, pkg.Size())
}

func outputValidateSuccess(formatter *OutputFormatter, records int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: records})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", records)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, records int, errs []content.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Records: records, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.File != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", e.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
