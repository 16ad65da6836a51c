package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new sqlforge project",
		Long: `Initialize a new sqlforge project with a default layout and configuration.

This creates:
  - tables/ directory for table scripts
  - views/ directory for view scripts
  - procedures/ directory for stored procedure scripts
  - sqlforge.yaml configuration file

Use --example to also create sample scripts demonstrating tables, a view
with cross-object references, and a stored procedure.`,
		Example: `  # Initialize in the current directory
  sqlforge init

  # Initialize with sample scripts
  sqlforge init --example

  # Initialize in a new directory
  sqlforge init my-database --example

  # Force overwrite existing config
  sqlforge init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			return runInit(cmdCtx, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create sample scripts alongside the layout")

	return cmd
}

// initConfig is the scaffolded sqlforge.yaml shape.
type initConfig struct {
	Project       string            `yaml:"project"`
	OutputDir     string            `yaml:"output_dir"`
	DefaultSchema string            `yaml:"default_schema"`
	Variables     map[string]string `yaml:"variables,omitempty"`
}

var exampleScripts = map[string]string{
	"tables/Customer.sql": `CREATE TABLE dbo.Customer (
    Id INT NOT NULL,
    Name NVARCHAR(100) NOT NULL,
    Email NVARCHAR(256),
    CONSTRAINT PK_Customer PRIMARY KEY (Id)
);
`,
	"tables/Orders.sql": `CREATE TABLE dbo.Orders (
    Id INT NOT NULL,
    CustomerId INT NOT NULL,
    Total DECIMAL(18, 2) NOT NULL,
    CONSTRAINT PK_Orders PRIMARY KEY (Id),
    CONSTRAINT FK_Orders_Customer FOREIGN KEY (CustomerId) REFERENCES dbo.Customer (Id)
);
`,
	"views/CustomerOrders.sql": `CREATE VIEW dbo.CustomerOrders
AS
SELECT c.Name, o.Total
FROM dbo.Customer c
JOIN dbo.Orders o ON o.CustomerId = c.Id;
`,
	"procedures/GetCustomerOrders.sql": `CREATE PROCEDURE dbo.GetCustomerOrders
    @CustomerId INT
AS
BEGIN
    SELECT Name, Total
    FROM dbo.CustomerOrders
    WHERE Name IS NOT NULL;
END;
`,
}

func runInit(cmdCtx *CommandContext, dir string, force, example bool) error {
	r := cmdCtx.Renderer

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "sqlforge.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("sqlforge.yaml already exists. Use --force to overwrite")
	}

	cfg := initConfig{
		Project:       ".",
		OutputDir:     "bin",
		DefaultSchema: "dbo",
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine("sqlforge.yaml", "success", "")

	for _, sub := range []string{"tables", "views", "procedures"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
		r.StatusLine(sub+"/", "success", "")
	}

	if example {
		for _, rel := range scriptOrder() {
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if err := os.WriteFile(path, []byte(exampleScripts[rel]), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", rel, err)
			}
			r.StatusLine(rel, "success", "")
		}
	}

	r.Println("")
	r.Success("sqlforge project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add table scripts to tables/")
	r.Println("  2. Add views and procedures referencing them")
	r.Println("  3. Run 'sqlforge build' to emit the dacpac")
	r.Println("  4. Run 'sqlforge dag' to see deployment levels")

	return nil
}

func scriptOrder() []string {
	return []string{
		"tables/Customer.sql",
		"tables/Orders.sql",
		"views/CustomerOrders.sql",
		"procedures/GetCustomerOrders.sql",
	}
}
