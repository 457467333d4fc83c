package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/dag"
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/git"
	"github.com/ariel-frischer/gatehook/internal/history"
	"github.com/ariel-frischer/gatehook/internal/logging"
	"github.com/ariel-frischer/gatehook/internal/metrics"
	"github.com/ariel-frischer/gatehook/internal/output"
	"github.com/ariel-frischer/gatehook/internal/progress"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/ariel-frischer/gatehook/internal/tasks"
	"github.com/ariel-frischer/gatehook/internal/workflow"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app bundles what every command builds from flags and configuration.
type app struct {
	cfg      *config.Configuration
	logger   *zap.Logger
	registry *task.Registry
}

// loadApp loads configuration, builds the logger and populates the task
// registry with built-in and custom tasks.
func loadApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: configPath,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}

	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	format := cfg.LogFormat
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		format = f
	}
	logger, err := logging.New(level, format, cmd.ErrOrStderr())
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Argument)
	}

	registry, err := tasks.NewRegistry(cfg.CustomTasks, afero.NewOsFs(), tasks.ExecRunner{})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}
	logger.Debug("registry ready", zap.Strings("tasks", registry.IDs()))

	return &app{cfg: cfg, logger: logger, registry: registry}, nil
}

// openRepository opens the git work tree containing the working directory.
func (a *app) openRepository() (*git.Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "getting working directory")
	}
	repo, err := git.Open(wd, a.logger)
	if err != nil {
		a.logger.Debug("open repository failed", zap.Error(err))
		return nil, clierrors.NotRepository(wd)
	}
	if branch, err := repo.CurrentBranch(); err == nil {
		a.logger.Debug("current branch", zap.String("branch", branch))
	}
	return repo, nil
}

// orchestrator wires the reporting sinks around a new orchestrator. The
// recorder is nil unless a metrics file is configured.
func (a *app) orchestrator(cmd *cobra.Command, repo *git.Repository) (*workflow.Orchestrator, *metrics.Recorder) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	caps := progress.DetectTerminalCapabilities()
	if !caps.SupportsColor {
		color.NoColor = true
	}

	reporters := workflow.MultiReporter{
		output.NewConsoleReporter(cmd.OutOrStdout(), output.ConsoleOptions{Caps: caps, Verbose: verbose}),
		output.NewLogReporter(a.logger),
	}
	var rec *metrics.Recorder
	if a.cfg.MetricsFile != "" {
		rec = metrics.NewRecorder()
		reporters = append(reporters, rec)
	}

	orch := workflow.NewOrchestrator(a.cfg, a.registry, workflow.OrchestratorOptions{
		Root:     repo.Root(),
		VCS:      repo,
		Reporter: reporters,
		Logger:   a.logger,
	})
	return orch, rec
}

// finishRun exports metrics, records the run in the history and turns the
// run outcome into a command error.
func (a *app) finishRun(cmd *cobra.Command, name string, repo *git.Repository, result *workflow.RunResult, runErr error, rec *metrics.Recorder) error {
	defer func() { _ = a.logger.Sync() }()

	if rec != nil {
		if err := rec.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.logger.Warn("metrics export failed", zap.Error(err))
		}
	}

	err := a.outcome(cmd, name, result, runErr)
	if result != nil && result.RunID != "" {
		a.recordHistory(repo.Root(), result, ExitCode(err))
	}
	return err
}

// recordHistory appends the run to the user's history. Failures are logged
// and never change the exit code.
func (a *app) recordHistory(root string, result *workflow.RunResult, exitCode int) {
	if a.cfg.HistoryLimit == 0 {
		return
	}
	stateDir, err := config.StateDir()
	if err != nil {
		a.logger.Warn("history disabled", zap.Error(err))
		return
	}
	w := history.NewWriter(afero.NewOsFs(), stateDir, a.cfg.HistoryLimit)
	if err := w.LogRun(root, result, exitCode); err != nil {
		a.logger.Warn("failed to record run history", zap.Error(err))
	}
}

// outcome maps a run result and error to the command error.
func (a *app) outcome(cmd *cobra.Command, name string, result *workflow.RunResult, runErr error) error {
	if runErr != nil {
		var (
			cycle   *dag.CycleError
			missing *dag.MissingDependencyError
			dup     *dag.DuplicateNodeError
			blocked *dag.BlockedError
		)
		switch {
		case errors.As(runErr, &blocked):
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", yellow("Blocked:"), blocked)
			for _, err := range besidesBlocked(runErr) {
				a.logger.Warn("run error", zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
			}
			return &exitError{code: ExitGateFailed}
		case errors.As(runErr, &cycle), errors.As(runErr, &missing), errors.As(runErr, &dup):
			return clierrors.InvalidPipeline(name, runErr)
		case errors.Is(runErr, workflow.ErrNotRepository):
			wd, _ := os.Getwd()
			return clierrors.NotRepository(wd)
		}
		return clierrors.WrapWithMessage(runErr, clierrors.Runtime, name+" run failed")
	}

	if result != nil && !result.Success {
		return &exitError{code: ExitGateFailed}
	}
	return nil
}

// besidesBlocked returns the errors joined with a blocked-pipeline error.
func besidesBlocked(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var rest []error
	for _, e := range joined.Unwrap() {
		var blocked *dag.BlockedError
		if e == nil || errors.As(e, &blocked) {
			continue
		}
		rest = append(rest, e)
	}
	return rest
}
