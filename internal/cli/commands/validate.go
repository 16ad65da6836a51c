package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/internal/cli/output"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile the project and report problems without emitting a package",
		Long: `Parse every script, assemble the object model, and resolve body
references, reporting anything a build would flag: unsupported statements,
duplicate definitions, and dependency cycles.

The command exits non-zero when any problem is found.`,
		Example: `  # Validate the project in the current directory
  sqlforge validate

  # Validate as JSON for CI pipelines
  sqlforge validate --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Compile(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		report := output.ValidateOutput{
			Objects:     res.Model.Len(),
			Diagnostics: make([]output.DiagnosticInfo, 0, len(res.Diagnostics)),
			Valid:       len(res.Diagnostics) == 0,
		}
		for _, d := range res.Diagnostics {
			report.Diagnostics = append(report.Diagnostics, output.DiagnosticInfo{
				File:    d.File,
				Message: d.Message,
			})
		}
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, d := range res.Diagnostics {
			r.StatusLine(diagnosticLine(d), "error", "")
		}
		if len(res.Diagnostics) == 0 {
			r.Success(fmt.Sprintf("%d objects, no problems found", res.Model.Len()))
		}
	}

	if len(res.Diagnostics) > 0 {
		return fmt.Errorf("validation found %d problem(s)", len(res.Diagnostics))
	}
	return nil
}
