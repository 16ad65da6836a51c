package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sqlforge/sqlforge/internal/cli/config"
	"github.com/sqlforge/sqlforge/internal/cli/testutil"
)

func TestInitCommandScaffoldsProject(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	testutil.Chdir(t, dir)

	out, err := executeCommand(t, NewInitCommand())
	require.NoError(t, err)
	testutil.AssertContains(t, out, "sqlforge project initialized")

	for _, sub := range []string{"tables", "views", "procedures"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, "%s should exist", sub)
		assert.True(t, info.IsDir())
	}

	data, err := os.ReadFile(filepath.Join(dir, "sqlforge.yaml"))
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "dbo", cfg["default_schema"])
	assert.Equal(t, "bin", cfg["output_dir"])
}

func TestInitCommandExample(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	testutil.Chdir(t, dir)

	_, err := executeCommand(t, NewInitCommand(), "--example")
	require.NoError(t, err)

	for _, rel := range scriptOrder() {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
		require.NoError(t, err, "%s should exist", rel)
	}
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	testutil.Chdir(t, dir)

	_, err := executeCommand(t, NewInitCommand())
	require.NoError(t, err)

	_, err = executeCommand(t, NewInitCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, NewInitCommand(), "--force")
	require.NoError(t, err)
}

func TestInitCommandTargetDirectory(t *testing.T) {
	config.ResetConfig()
	base := t.TempDir()
	testutil.Chdir(t, base)

	_, err := executeCommand(t, NewInitCommand(), "my-database", "--example")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "my-database", "sqlforge.yaml"))
	require.NoError(t, err)
}
