package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariel-frischer/gatehook/internal/config"
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run <hook>",
		Short:   "Run the quality gates configured for a hook",
		GroupID: groupGates,
		Long: `Run the quality gates configured for a hook: pre-commit, pre-push or ci.

The hook's file scope selects the files tasks see:
  staged   files staged in the index (pre-commit default)
  changed  files changed since base_branch
  diff     tracked files modified in the index or working tree
  all      every tracked file

Tasks in fix mode apply fixes permitted by fix_mode before checking. Files
modified by fixes are restaged unless running in CI.

Exit codes:
  0 - All blocking gates passed
  1 - A blocking gate failed
  2 - The run could not complete
  3 - Invalid arguments
  4 - Invalid configuration or pipeline
  5 - Not inside a git repository`,
		Example: `  # Typical .git/hooks/pre-commit body
  gatehook run pre-commit

  # Check every tracked file without fixing
  gatehook run ci --scope all --fix-mode none

  # Stop sequential stages at the first blocking failure
  gatehook run pre-push --fail-fast`,
		Args: hookArg,
		RunE: runHook,
	}

	cmd.Flags().String("scope", "", "Override the file scope (staged, changed, diff, all)")
	cmd.Flags().String("fix-mode", "", "Override the fix mode (none, safe, cautious, all)")
	cmd.Flags().String("base", "", "Override base_branch for the changed scope")
	cmd.Flags().Bool("fail-fast", false, "Stop a sequential stage after its first blocking failure")
	cmd.Flags().Bool("ci", false, "Treat the run as a CI run (no restaging)")
	cmd.Flags().Bool("no-restage", false, "Do not restage files modified by fixes")
	return cmd
}

// hookArg requires exactly one supported hook name.
func hookArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return clierrors.NewArgumentErrorWithUsage("exactly one hook is required", cmd.UseLine(), "Valid hooks: pre-commit, pre-push, ci")
	}
	if _, err := task.ParseHookType(args[0]); err != nil {
		return clierrors.UnknownHook(args[0], hookNames())
	}
	return nil
}

// noArgs rejects positional arguments as an argument error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return clierrors.NewArgumentErrorWithUsage(fmt.Sprintf("unexpected argument %q", args[0]), cmd.UseLine())
	}
	return nil
}

func hookNames() []string {
	var names []string
	for _, h := range task.AllHooks() {
		names = append(names, string(h))
	}
	return names
}

func runHook(cmd *cobra.Command, args []string) error {
	hook := task.HookType(args[0])

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, a.cfg, hook); err != nil {
		return err
	}

	repo, err := a.openRepository()
	if err != nil {
		return err
	}
	orch, rec := a.orchestrator(cmd, repo)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, runErr := orch.Run(ctx, hook)
	return a.finishRun(cmd, string(hook), repo, result, runErr, rec)
}

// applyRunFlags folds command-line overrides into the hook's configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Configuration, hook task.HookType) error {
	hc := cfg.Hooks[string(hook)]
	flags := cmd.Flags()

	if s, _ := flags.GetString("scope"); s != "" {
		scope, err := task.ParseFileScope(s)
		if err != nil {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
		}
		hc.FileScope = scope
	}
	if m, _ := flags.GetString("fix-mode"); m != "" {
		mode, err := task.ParseFixMode(m)
		if err != nil {
			return clierrors.InvalidFixMode(m)
		}
		hc.FixMode = mode
	}
	if flags.Changed("fail-fast") {
		failFast, _ := flags.GetBool("fail-fast")
		hc.FailFast = &failFast
	}
	if base, _ := flags.GetString("base"); base != "" {
		cfg.BaseBranch = base
	}
	if ci, _ := flags.GetBool("ci"); ci {
		cfg.CI = true
	}
	if noRestage, _ := flags.GetBool("no-restage"); noRestage {
		cfg.Restage = false
	}

	cfg.Hooks[string(hook)] = hc
	return nil
}

// signalContext cancels on SIGINT or SIGTERM so running commands are killed.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
