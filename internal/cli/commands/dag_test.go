package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlforge/sqlforge/internal/cli/config"
	"github.com/sqlforge/sqlforge/internal/cli/testutil"
)

func TestDAGCommandShowsLevels(t *testing.T) {
	config.ResetConfig()
	project := testutil.SetupTestProject(t)
	testutil.Chdir(t, project)

	out, err := executeCommand(t, NewDAGCommand())
	require.NoError(t, err)

	// non-TTY auto mode renders markdown
	testutil.AssertContains(t, out, "# Dependency Graph")
	testutil.AssertContains(t, out, "## Level 0")
	testutil.AssertContains(t, out, "## Level 1")
	testutil.AssertContains(t, out, "[dbo].[AccountOrders]")
	testutil.AssertContains(t, out, "depends on: [dbo].[Account], [dbo].[Orders]")
	testutil.AssertNoANSI(t, out)
}
