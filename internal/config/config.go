// Package config holds the build settings shared by the engine and the CLI.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Default configuration values.
const (
	DefaultOutputDir  = "bin"
	DefaultSchemaName = "dbo"
	DefaultCacheFile  = ".sqlforge/cache.db"
)

// Build carries everything the engine needs for one compilation.
type Build struct {
	// Project is the .sqlproj path or project directory.
	Project string
	// OutputDir receives the package when Package is empty.
	OutputDir string
	// Package is an explicit output path overriding OutputDir.
	Package string
	// DefaultSchema resolves unqualified object and column names.
	DefaultSchema string
	// CachePath is the incremental-build cache database; empty disables it.
	CachePath string
	// Workers bounds parse/resolve parallelism; 0 means GOMAXPROCS.
	Workers int
	// Variables are SQLCMD overrides layered over project defaults.
	Variables map[string]string
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(b *Build) {
	if b == nil {
		return
	}
	if b.Project == "" {
		b.Project = "."
	}
	if b.OutputDir == "" {
		b.OutputDir = DefaultOutputDir
	}
	if b.DefaultSchema == "" {
		b.DefaultSchema = DefaultSchemaName
	}
	if b.Workers <= 0 {
		b.Workers = runtime.GOMAXPROCS(0)
	}
}

// Validate checks settings the engine cannot recover from.
func Validate(b *Build) error {
	if b.Project == "" {
		return fmt.Errorf("project path is required")
	}
	if strings.ContainsAny(b.DefaultSchema, "[]. ") {
		return fmt.Errorf("invalid default schema %q", b.DefaultSchema)
	}
	return nil
}
