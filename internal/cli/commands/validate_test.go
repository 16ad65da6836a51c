package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlforge/sqlforge/internal/cli/config"
	"github.com/sqlforge/sqlforge/internal/cli/testutil"
)

func TestValidateCommandCleanProject(t *testing.T) {
	config.ResetConfig()
	project := testutil.SetupTestProject(t)
	testutil.Chdir(t, project)

	out, err := executeCommand(t, NewValidateCommand())
	require.NoError(t, err)
	testutil.AssertContains(t, out, "no problems found")
	testutil.AssertNoANSI(t, out)
}

func TestValidateCommandFailsOnDiagnostics(t *testing.T) {
	config.ResetConfig()
	project := testutil.SetupTestProject(t)
	testutil.Chdir(t, project)
	writeFile(t, filepath.Join(project, "alter.sql"), "ALTER TABLE dbo.Account ADD Extra INT")

	out, err := executeCommand(t, NewValidateCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation found")
	testutil.AssertContains(t, out, "alter.sql")
}
