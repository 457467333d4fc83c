package cli

import (
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/cobra"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fix",
		Short:   "Apply fixes from every fixable task",
		GroupID: groupGates,
		Long: `Apply the fixes of every fixable task whose safety level the fix mode
permits, one task at a time in registration order. No checks run.

Fix modes:
  none      apply nothing
  safe      only fixes that cannot change behavior (default from fix_mode)
  cautious  safe and cautious fixes
  all       every fix, including unsafe ones

Modified files are restaged unless running in CI.`,
		Example: `  # Apply safe fixes to staged files
  gatehook fix

  # Apply every fix to all tracked files
  gatehook fix --mode all --scope all`,
		Args: noArgs,
		RunE: runFix,
	}

	cmd.Flags().StringP("mode", "m", "", "Fix mode (none, safe, cautious, all); defaults to fix_mode")
	cmd.Flags().String("scope", "", "Override the file scope (staged, changed, diff, all)")
	cmd.Flags().Bool("no-restage", false, "Do not restage modified files")
	return cmd
}

func runFix(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	mode := a.cfg.FixMode
	if m, _ := cmd.Flags().GetString("mode"); m != "" {
		if mode, err = task.ParseFixMode(m); err != nil {
			return clierrors.InvalidFixMode(m)
		}
	}
	if s, _ := cmd.Flags().GetString("scope"); s != "" {
		scope, err := task.ParseFileScope(s)
		if err != nil {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
		}
		a.cfg.FileScope = scope
	}
	if noRestage, _ := cmd.Flags().GetBool("no-restage"); noRestage {
		a.cfg.Restage = false
	}

	repo, err := a.openRepository()
	if err != nil {
		return err
	}
	orch, rec := a.orchestrator(cmd, repo)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, runErr := orch.FixOnly(ctx, mode)
	return a.finishRun(cmd, "fix", repo, result, runErr, rec)
}
