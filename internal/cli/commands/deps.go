package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/internal/cli/output"
	"github.com/sqlforge/sqlforge/internal/model"
)

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps [object]",
		Short: "Show resolved body references per object",
		Long: `List the object and column references resolved from each view,
procedure, function, and trigger body.

An optional argument limits the report to one object, matched by name with
or without the schema prefix.`,
		Example: `  # Show every object's resolved references
  sqlforge deps

  # Show one object
  sqlforge deps dbo.CustomerOrders

  # Machine-readable output
  sqlforge deps --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}
			return runDeps(cmd, filter)
		},
	}

	return cmd
}

func runDeps(cmd *cobra.Command, filter string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Compile(cmd.Context())
	if err != nil {
		return err
	}

	var objects []*model.Object
	for _, obj := range res.Model.Bodied() {
		if filter != "" && !matchesObject(obj, filter) {
			continue
		}
		objects = append(objects, obj)
	}
	if filter != "" && len(objects) == 0 {
		return fmt.Errorf("no object matches %q", filter)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		report := output.DepsOutput{Objects: make([]output.ObjectDeps, 0, len(objects))}
		for _, obj := range objects {
			deps := res.Deps[obj.Key()]
			names := make([]string, 0, len(deps))
			for _, d := range deps {
				names = append(names, d.String())
			}
			report.Objects = append(report.Objects, output.ObjectDeps{
				Name:         obj.Name.String(),
				Kind:         obj.Kind.String(),
				File:         obj.SourceFile,
				Dependencies: names,
			})
		}
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		rows := make([][]string, 0, len(objects))
		for _, obj := range objects {
			deps := res.Deps[obj.Key()]
			names := make([]string, 0, len(deps))
			for _, d := range deps {
				names = append(names, d.String())
			}
			rows = append(rows, []string{
				obj.Name.String(),
				obj.Kind.String(),
				strings.Join(names, ", "),
			})
		}
		r.Table([]string{"Object", "Kind", "References"}, rows)
		return nil
	}
}

// matchesObject matches "name", "schema.name", or the bracketed form.
func matchesObject(obj *model.Object, filter string) bool {
	f := strings.ToLower(strings.NewReplacer("[", "", "]", "").Replace(filter))
	name := strings.ToLower(obj.Name.Name)
	qualified := strings.ToLower(obj.Name.Schema) + "." + name
	return f == name || f == qualified
}
