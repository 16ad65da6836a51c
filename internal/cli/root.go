// Package cli provides the command-line interface for sqlforge.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/internal/cli/commands"
	"github.com/sqlforge/sqlforge/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlforge",
		Short: "sqlforge - SQL Server database project compiler",
		Long: `sqlforge compiles SQL Server database projects into dacpac packages.

It parses the project's DDL scripts, resolves cross-object references in
view, procedure, function, and trigger bodies, builds the dependency graph,
and emits a deployable dacpac.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), newLogger(cmd.ErrOrStderr(), cfg))
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
SQL Server database project compiler
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlforge.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Path to the project directory or .sqlproj file")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for the emitted package")
	rootCmd.PersistentFlags().String("package", "", "Explicit output package path")
	rootCmd.PersistentFlags().String("default-schema", "", "Schema assumed for unqualified object names")
	rootCmd.PersistentFlags().String("cache", "", "Path to the build cache database")
	rootCmd.PersistentFlags().Int("workers", 0, "Parallel script workers (0 = number of CPUs)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDepsCommand())
	rootCmd.AddCommand(commands.NewDAGCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlforge.

To load completions:

Bash:
  $ source <(sqlforge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlforge completion bash > /etc/bash_completion.d/sqlforge
  # macOS:
  $ sqlforge completion bash > $(brew --prefix)/etc/bash_completion.d/sqlforge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqlforge completion zsh > "${fpath[1]}/_sqlforge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sqlforge completion fish | source

  # To load completions for each session, execute once:
  $ sqlforge completion fish > ~/.config/fish/completions/sqlforge.fish

PowerShell:
  PS> sqlforge completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sqlforge completion powershell > sqlforge.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
