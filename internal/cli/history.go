package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/gatehook/internal/config"
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/git"
	"github.com/ariel-frischer/gatehook/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHistoryCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent gate runs",
		GroupID: groupConfig,
		Long: `Show recorded gate runs with timestamp, hook, outcome counts, exit code
and duration. Only runs of the current repository are shown unless --all is
given. The number of retained runs is set by history_limit.`,
		Example: `  # Last 10 runs in this repository
  gatehook history -n 10

  # Only pre-push runs, across all repositories
  gatehook history --hook pre-push --all`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stateDir, err := config.StateDir()
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Runtime, "locating state directory")
			}
			return runHistory(cmd, fs, stateDir, currentRepoRoot())
		},
	}

	cmd.Flags().String("hook", "", "Filter by hook (pre-commit, pre-push, ci, fix)")
	cmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	cmd.Flags().Bool("all", false, "Include runs of every repository")
	cmd.Flags().Bool("clear", false, "Clear all history")
	return cmd
}

// currentRepoRoot returns the work tree root of the working directory, or ""
// outside a repository.
func currentRepoRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	repo, err := git.Open(wd, zap.NewNop())
	if err != nil {
		return ""
	}
	return repo.Root()
}

// runHistory lists or clears the history stored in stateDir. repo restricts
// the listing unless --all is set.
func runHistory(cmd *cobra.Command, fs afero.Fs, stateDir, repo string) error {
	flags := cmd.Flags()
	clearFlag, _ := flags.GetBool("clear")
	hook, _ := flags.GetString("hook")
	limit, _ := flags.GetInt("limit")
	if all, _ := flags.GetBool("all"); all {
		repo = ""
	}

	if limit < 0 {
		return clierrors.NewArgumentErrorWithUsage(fmt.Sprintf("limit must be positive, got %d", limit), cmd.UseLine())
	}

	if clearFlag {
		if err := history.Clear(fs, stateDir); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "clearing history")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	f, err := history.Load(fs, stateDir)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "loading history")
	}

	entries := history.Filter(f.Entries, repo, hook, limit)
	if len(entries) == 0 {
		if hook != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching entries for hook '%s'.\n", hook)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		}
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

// displayEntries prints one line per entry, oldest first.
func displayEntries(cmd *cobra.Command, entries []history.Entry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, e := range entries {
		exitCode := fmt.Sprintf("%d", e.ExitCode)
		if e.ExitCode == 0 {
			exitCode = green(exitCode)
		} else {
			exitCode = red(exitCode)
		}

		fmt.Fprintf(out, "%s  %-10s  %dP %dF %dW %dS  exit=%s  %s\n",
			cyan(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			e.Hook,
			e.Passed, e.Failed, e.Warning, e.Skipped,
			exitCode,
			e.Duration,
		)
	}
}
