// Package config loads CLI configuration from sqlforge.yaml, environment
// variables, and flags, with flag > env > file > default precedence.
package config

import (
	intconfig "github.com/sqlforge/sqlforge/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	Project       string            `koanf:"project"`
	OutputDir     string            `koanf:"output_dir"`
	Package       string            `koanf:"package"`
	DefaultSchema string            `koanf:"default_schema"`
	CachePath     string            `koanf:"cache_path"`
	Workers       int               `koanf:"workers"`
	Verbose       bool              `koanf:"verbose"`
	Quiet         bool              `koanf:"quiet"`
	OutputFormat  string            `koanf:"output"`
	Variables     map[string]string `koanf:"variables"`

	// ProjectRoot anchors relative path resolution; never read from file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput = "auto" // auto-detect: TTY=text, non-TTY=markdown
)

// Build converts the CLI view into the engine's build settings.
func (c *Config) Build() intconfig.Build {
	b := intconfig.Build{
		Project:       c.Project,
		OutputDir:     c.OutputDir,
		Package:       c.Package,
		DefaultSchema: c.DefaultSchema,
		CachePath:     c.CachePath,
		Workers:       c.Workers,
		Variables:     c.Variables,
	}
	intconfig.ApplyDefaults(&b)
	return b
}
