// Package engine orchestrates the compilation pipeline: project loading,
// script parsing, model assembly, body reference resolution, and package
// emission.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sqlforge/sqlforge/internal/config"
	"github.com/sqlforge/sqlforge/internal/dacpac"
	"github.com/sqlforge/sqlforge/internal/dag"
	"github.com/sqlforge/sqlforge/internal/model"
	"github.com/sqlforge/sqlforge/internal/project"
	"github.com/sqlforge/sqlforge/internal/state"
	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

// Engine compiles one project. It is safe to call Build repeatedly on the
// same engine, which is how watch mode uses it.
type Engine struct {
	cfg    config.Build
	logger *slog.Logger
	store  *state.Store // nil when the cache is disabled
}

// Diagnostic is a non-fatal problem found during compilation.
type Diagnostic struct {
	File    string
	Message string
}

// Result is the outcome of a compile or build.
type Result struct {
	Project     *project.Project
	Model       *model.Model
	Deps        map[string][]resolve.Dependency
	Graph       *dag.Graph
	PackagePath string
	UpToDate    bool
	Diagnostics []Diagnostic
}

// New creates an engine. A nil logger discards output.
func New(cfg config.Build, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, logger: logger}
	if cfg.CachePath != "" {
		store, err := state.Open(cfg.CachePath, logger)
		if err != nil {
			// the cache is an optimization; a broken cache never blocks a build
			logger.Warn("build cache unavailable", slog.String("error", err.Error()))
		} else {
			e.store = store
		}
	}
	return e, nil
}

// Close releases the cache store.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// parsedScript is one script's contribution to the model.
type parsedScript struct {
	path       string
	content    string
	statements []parser.Statement
	errors     []error
}

// Compile runs the pipeline up to dependency resolution: project loading,
// parallel parsing, model assembly, the registry barrier, parallel body
// resolution, and graph construction. Parse problems become diagnostics, not
// failures.
func (e *Engine) Compile(ctx context.Context) (*Result, error) {
	proj, err := project.Load(e.cfg.Project)
	if err != nil {
		return nil, err
	}
	e.logger.Info("project loaded",
		slog.String("name", proj.Props.Name),
		slog.Int("scripts", len(proj.Scripts)))

	vars := mergeVariables(proj.Variables, e.cfg.Variables)
	defaultSchema := e.cfg.DefaultSchema
	if proj.Props.DefaultSchema != "" && e.cfg.DefaultSchema == config.DefaultSchemaName {
		defaultSchema = proj.Props.DefaultSchema
	}

	// parse every script concurrently; results keep script order so the
	// model sees a deterministic statement sequence
	scripts := make([]parsedScript, len(proj.Scripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, path := range proj.Scripts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := project.ReadScript(path)
			if err != nil {
				return err
			}
			expanded := project.ExpandVariables(content, vars)
			stmts, errs := parser.ParseScript(expanded, defaultSchema)
			scripts[i] = parsedScript{
				path:       path,
				content:    content,
				statements: stmts,
				errors:     errs,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Project: proj, Model: model.New()}
	for _, sc := range scripts {
		rel := relPath(proj.Root, sc.path)
		for _, perr := range sc.errors {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: rel, Message: perr.Error()})
		}
		for _, stmt := range sc.statements {
			if err := res.Model.Add(stmt, rel); err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{File: rel, Message: err.Error()})
			}
		}
	}
	e.logger.Debug("model assembled", slog.Int("objects", res.Model.Len()))

	// registry barrier: the column registry is complete and immutable before
	// the first body resolves against it
	registry := res.Model.BuildRegistry()
	resolver := resolve.NewResolver(registry, defaultSchema)

	bodied := res.Model.Bodied()
	resolved := make([][]resolve.Dependency, len(bodied))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, obj := range bodied {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resolved[i] = resolver.Resolve(obj.Body)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Deps = make(map[string][]resolve.Dependency, len(bodied))
	for i, obj := range bodied {
		res.Deps[obj.Key()] = resolved[i]
	}

	res.Graph = dag.Build(res.Model, res.Deps)
	if cyclic, path := res.Graph.HasCycle(); cyclic {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Message: fmt.Sprintf("dependency cycle: %v", path),
		})
	}
	return res, nil
}

// Build compiles the project and writes the package. Unchanged inputs with an
// intact previous package short-circuit to an up-to-date result.
func (e *Engine) Build(ctx context.Context) (*Result, error) {
	res, err := e.Compile(ctx)
	if err != nil {
		return nil, err
	}

	outputPath := e.cfg.Package
	if outputPath == "" {
		outputPath = filepath.Join(e.cfg.OutputDir, res.Project.Props.Name+".dacpac")
	}
	res.PackagePath = outputPath

	hashes := scriptHashes(res.Project)

	if e.store != nil {
		if upToDate, err := e.isUpToDate(res.Project.Props.Name, outputPath, hashes); err != nil {
			e.logger.Warn("cache check failed", slog.String("error", err.Error()))
		} else if upToDate {
			e.logger.Info("package up to date", slog.String("package", outputPath))
			res.UpToDate = true
			return res, nil
		}
	}

	var buildID string
	if e.store != nil {
		if b, err := e.store.StartBuild(res.Project.Props.Name); err != nil {
			e.logger.Warn("cache write failed", slog.String("error", err.Error()))
		} else {
			buildID = b.ID
		}
	}

	if err := dacpac.WritePackage(outputPath, res.Model, res.Deps, res.Project); err != nil {
		if buildID != "" {
			_ = e.store.FinishBuild(buildID, "", err.Error())
		}
		return nil, err
	}
	e.logger.Info("package written",
		slog.String("package", outputPath),
		slog.Int("objects", res.Model.Len()))

	if buildID != "" {
		if err := e.store.RecordHashes(hashes); err != nil {
			e.logger.Warn("cache write failed", slog.String("error", err.Error()))
		}
		_ = e.store.FinishBuild(buildID, outputPath, "")
	}
	return res, nil
}

// isUpToDate reports whether the previous build's output is still valid for
// the current inputs.
func (e *Engine) isUpToDate(projectName, outputPath string, hashes map[string]string) (bool, error) {
	changed, removed, err := e.store.Changed(hashes)
	if err != nil {
		return false, err
	}
	if len(changed) > 0 || len(removed) > 0 {
		e.logger.Debug("inputs changed",
			slog.Int("changed", len(changed)), slog.Int("removed", len(removed)))
		return false, nil
	}

	latest, err := e.store.LatestBuild(projectName)
	if err != nil {
		return false, err
	}
	if latest == nil || latest.Status != state.StatusSucceeded || latest.Package != outputPath {
		return false, nil
	}
	return fileExists(outputPath), nil
}

// scriptHashes hashes every script's raw bytes for change detection.
func scriptHashes(proj *project.Project) map[string]string {
	hashes := make(map[string]string, len(proj.Scripts))
	for _, path := range proj.Scripts {
		content, err := project.ReadScript(path)
		if err != nil {
			continue
		}
		hashes[relPath(proj.Root, path)] = state.HashContent([]byte(content))
	}
	return hashes
}

// mergeVariables overlays CLI variable overrides on project defaults.
func mergeVariables(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
