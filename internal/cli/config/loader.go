package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/sqlforge/sqlforge/internal/config"
)

// loggerKey stores the logger in the command context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the tree the config search walks.
const maxUpwardSearchLevels = 10

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile picks the config file: explicit path > sqlforge.yaml >
// sqlforge.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sqlforge.yaml", "sqlforge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func configExistsIn(dir string) bool {
	for _, name := range []string{"sqlforge.yaml", "sqlforge.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a sqlforge config
// file. Returns "" when none is found within the search limit.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Explicit --project flag (the flag's directory when it names a file)
//  2. Search upward from CWD for sqlforge.yaml
//  3. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("project") {
		if proj, _ := flags.GetString("project"); proj != "" {
			abs, err := filepath.Abs(proj)
			if err != nil {
				abs = filepath.Clean(proj)
			}
			if info, err := os.Stat(abs); err == nil && !info.IsDir() {
				return filepath.Dir(abs)
			}
			return abs
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves path against baseDir unless it is empty or
// already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// a path given on the command line is relative to CWD, not project root;
	// fix it to absolute before the resolution step below
	var flagProject, flagCache, flagPackage, flagOutputDir string
	if flags != nil {
		abs := func(name string) string {
			if !flags.Changed(name) {
				return ""
			}
			v, _ := flags.GetString(name)
			if v == "" {
				return ""
			}
			a, err := filepath.Abs(v)
			if err != nil {
				return filepath.Clean(v)
			}
			return a
		}
		flagProject = abs("project")
		flagCache = abs("cache")
		flagPackage = abs("package")
		flagOutputDir = abs("output-dir")
	}

	// an explicit config file anchors the project root at its directory when
	// no flag gave a better hint
	if cfgFile != "" && flagProject == "" {
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project":        ".",
		"output_dir":     intconfig.DefaultOutputDir,
		"default_schema": intconfig.DefaultSchemaName,
		"cache_path":     intconfig.DefaultCacheFile,
		"workers":        0,
		"verbose":        false,
		"quiet":          false,
		"output":         DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. config file, searched in the project root when not explicit
	if cfgFile == "" {
		for _, name := range []string{"sqlforge.yaml", "sqlforge.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. environment variables: SQLFORGE_DEFAULT_SCHEMA -> default_schema
	if err := k.Load(env.Provider("SQLFORGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLFORGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")

			// the CLI flag is --cache for brevity; the config key spells it out
			if key == "cache" {
				return "cache_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. resolve paths against the project root; flag-given paths already
	// resolved against CWD win as-is
	cfg.ProjectRoot = projectRoot
	if flagProject != "" {
		cfg.Project = flagProject
	} else {
		cfg.Project = resolvePathRelativeTo(cfg.Project, projectRoot)
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	} else {
		cfg.OutputDir = resolvePathRelativeTo(cfg.OutputDir, projectRoot)
	}
	if flagPackage != "" {
		cfg.Package = flagPackage
	} else {
		cfg.Package = resolvePathRelativeTo(cfg.Package, projectRoot)
	}
	if flagCache != "" {
		cfg.CachePath = flagCache
	} else {
		cfg.CachePath = resolvePathRelativeTo(cfg.CachePath, projectRoot)
	}

	build := cfg.Build()
	if err := intconfig.Validate(&build); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger. It lets the
// commands package retrieve the logger without importing the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
