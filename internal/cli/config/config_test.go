package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "dbo", cfg.DefaultSchema)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	content := []byte("default_schema: sales\noutput_dir: dist\nvariables:\n  Environment: prod\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlforge.yaml"), content, 0o644))
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sales", cfg.DefaultSchema)
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.OutputDir)
	assert.Equal(t, "prod", cfg.Variables["Environment"])
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlforge.yaml"),
		[]byte("default_schema: sales\n"), 0o644))
	chdir(t, dir)
	t.Setenv("SQLFORGE_DEFAULT_SCHEMA", "audit")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "audit", cfg.DefaultSchema)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())
	t.Setenv("SQLFORGE_DEFAULT_SCHEMA", "audit")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("default-schema", "", "")
	require.NoError(t, flags.Parse([]string{"--default-schema=ops"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.DefaultSchema)
}

func TestLoadConfigCacheFlagMapsToCachePath(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("cache", "", "")
	require.NoError(t, flags.Parse([]string{"--cache=my.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "my.db"), cfg.CachePath)
}

func TestProjectRootFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sqlforge.yaml"),
		[]byte("default_schema: sales\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "sales", cfg.DefaultSchema)
}

func TestExplicitConfigFileAnchorsRoot(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sqlforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output_dir: out\n"), 0o644))
	chdir(t, t.TempDir())

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
}

func TestInvalidDefaultSchemaRejected(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlforge.yaml"),
		[]byte("default_schema: \"[bad schema]\"\n"), 0o644))
	chdir(t, dir)

	_, err := LoadConfig("", nil)
	assert.Error(t, err)
}

func TestBuildAppliesDefaults(t *testing.T) {
	cfg := &Config{Project: "proj", DefaultSchema: ""}
	b := cfg.Build()
	assert.Equal(t, "dbo", b.DefaultSchema)
	assert.Greater(t, b.Workers, 0)
}
