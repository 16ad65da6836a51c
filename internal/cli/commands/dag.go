package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/internal/cli/output"
	"github.com/sqlforge/sqlforge/internal/dag"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Show the object dependency graph",
		Long: `Display the dependency graph of all objects in the project.

Objects are grouped by deployment level: everything in a level depends only
on objects in earlier levels, so a level's objects can be created in any
order once the previous levels exist.`,
		Example: `  # Show the graph
  sqlforge dag

  # Output as JSON
  sqlforge dag --output json

  # Output as Markdown
  sqlforge dag --output markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd)
		},
	}

	return cmd
}

func runDAG(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Compile(cmd.Context())
	if err != nil {
		return err
	}

	graph := res.Graph
	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to compute deployment levels: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, graph, levels)
	case output.ModeMarkdown:
		return dagMarkdown(r, graph, levels)
	default:
		return dagText(r, graph, levels)
	}
}

func dagText(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			deps := graph.DependenciesOf(id)
			dependents := graph.DependentsOf(id)

			r.Printf("  %s\n", styles.ObjectName.Render(id))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if len(dependents) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d objects, %d dependencies", graph.NodeCount(), graph.EdgeCount())))
	return nil
}

func dagMarkdown(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Level %d", i)))

		for _, id := range level {
			deps := graph.DependenciesOf(id)
			dependents := graph.DependentsOf(id)

			r.Printf("- %s\n", id)
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(dependents) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Objects", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", graph.EdgeCount())))
	return nil
}

func dagJSON(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	report := output.DAGOutput{
		Levels:       make([]output.DAGLevel, 0, len(levels)),
		TotalObjects: graph.NodeCount(),
		TotalEdges:   graph.EdgeCount(),
	}

	for i, level := range levels {
		dagLevel := output.DAGLevel{
			Level:   i,
			Objects: make([]output.DAGNode, 0, len(level)),
		}
		for _, id := range level {
			dagLevel.Objects = append(dagLevel.Objects, output.DAGNode{
				Name:      id,
				DependsOn: graph.DependenciesOf(id),
				UsedBy:    graph.DependentsOf(id),
			})
		}
		report.Levels = append(report.Levels, dagLevel)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
