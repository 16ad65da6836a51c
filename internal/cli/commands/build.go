package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/internal/cli/output"
	"github.com/sqlforge/sqlforge/internal/engine"
)

// rebuildDebounce coalesces the event bursts editors produce on save.
const rebuildDebounce = 250 * time.Millisecond

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the project and emit the dacpac package",
		Long: `Compile the project's DDL scripts into a dacpac package.

Scripts are parsed in parallel, object references in view, procedure,
function, and trigger bodies are resolved against the assembled model, and
the package is written to the output directory. Unchanged inputs with an
intact previous package skip the write.`,
		Example: `  # Build the project in the current directory
  sqlforge build

  # Build a specific project to an explicit package path
  sqlforge build --project ./db/Warehouse.sqlproj --package out/Warehouse.dacpac

  # Rebuild automatically when scripts change
  sqlforge build --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when project scripts change")

	return cmd
}

func runBuild(cmd *cobra.Command, watch bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Build(cmd.Context())
	if err != nil {
		return err
	}
	if err := renderBuild(cmdCtx.Renderer, res); err != nil {
		return err
	}

	if !watch {
		return nil
	}
	return watchAndRebuild(cmd.Context(), cmdCtx, res.Project.Root)
}

func renderBuild(r *output.Renderer, res *engine.Result) error {
	for _, d := range res.Diagnostics {
		r.Warning(diagnosticLine(d))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(output.BuildOutput{
			Project:  res.Project.Props.Name,
			Package:  res.PackagePath,
			Objects:  res.Model.Len(),
			UpToDate: res.UpToDate,
		})
	case output.ModeMarkdown:
		r.Println(output.FormatKeyValue("Project", res.Project.Props.Name))
		r.Println(output.FormatKeyValue("Package", res.PackagePath))
		r.Println(output.FormatKeyValue("Objects", fmt.Sprintf("%d", res.Model.Len())))
		if res.UpToDate {
			r.Println(output.FormatKeyValue("Status", "up to date"))
		}
		return nil
	default:
		if res.UpToDate {
			r.Println(r.Styles().Muted.Render(fmt.Sprintf("%s is up to date", res.PackagePath)))
			return nil
		}
		r.Success(fmt.Sprintf("%s (%d objects)", res.PackagePath, res.Model.Len()))
		return nil
	}
}

// watchAndRebuild blocks, rebuilding the project whenever a script under
// root changes. New directories are added to the watch as they appear.
func watchAndRebuild(ctx context.Context, cmdCtx *CommandContext, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}
	cmdCtx.Renderer.Printf("watching %s for changes\n", root)

	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Warn("watch error", "error", err.Error())
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// a new directory must be watched for its own events
				_ = watchTree(watcher, ev.Name)
			}
			if !isProjectInput(ev.Name) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(rebuildDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case <-rebuild:
			res, err := cmdCtx.Engine.Build(ctx)
			if err != nil {
				cmdCtx.Renderer.Error(err.Error())
				continue
			}
			if err := renderBuild(cmdCtx.Renderer, res); err != nil {
				return err
			}
		}
	}
}

// watchTree adds path and every directory below it to the watcher. Non-dir
// paths are ignored.
func watchTree(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(p)
	})
}

func isProjectInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".sqlproj":
		return true
	}
	return false
}

func diagnosticLine(d engine.Diagnostic) string {
	if d.File == "" {
		return d.Message
	}
	return d.File + ": " + d.Message
}
