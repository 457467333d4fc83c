// Package cli implements the gatehook command surface.
package cli

import (
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupGates  = "gates"
	groupConfig = "config"
)

var rootCmd = newRootCmd(afero.NewOsFs())

// newRootCmd builds the full command tree. fs backs commands that write
// project files.
func newRootCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatehook",
		Short: "Run local quality gates for git hooks and CI",
		Long: `gatehook runs the quality gates configured for a git hook.

Each hook (pre-commit, pre-push, ci) runs either a flat task list, scheduled
in dependency waves, or a pipeline of stages. Tasks check files in scope and
may apply fixes, which are restaged automatically.

Configuration is read from .gatehook/config.yml, the user config and
GATEHOOK_* environment variables.`,
		Example: `  # Run the pre-commit gates on staged files
  gatehook run pre-commit

  # Apply every safe fix to changed files
  gatehook fix --mode safe

  # Show the execution order of the pre-push pipeline
  gatehook validate pre-push`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to project config file (default: .gatehook/config.yml)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show diagnostics of passing tasks")
	cmd.PersistentFlags().String("log-format", "", "Log format: console or json (overrides log_format)")

	cmd.AddGroup(
		&cobra.Group{ID: groupGates, Title: "Quality Gates:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), c.UseLine())
	})

	cmd.AddCommand(
		newRunCmd(),
		newFixCmd(),
		newTasksCmd(),
		newValidateCmd(),
		newInitCmd(fs),
		newHistoryCmd(fs),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command, prints any unreported error and returns
// the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !reported(err) {
		clierrors.FprintError(rootCmd.ErrOrStderr(), err)
	}
	return ExitCode(err)
}
