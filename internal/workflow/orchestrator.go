package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotRepository is returned when the working directory is not inside a
// version-controlled repository.
var ErrNotRepository = errors.New("not a git repository")

// FixStageName names the synthetic stage reported by FixOnly.
const FixStageName = "fix"

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	// Root is the repository root handed to tasks.
	Root     string
	VCS      task.VCS
	Reporter Reporter
	Logger   *zap.Logger
}

// Orchestrator runs the pipeline configured for a hook.
type Orchestrator struct {
	cfg      *config.Configuration
	registry *task.Registry
	root     string
	vcs      task.VCS
	reporter Reporter
	logger   *zap.Logger
}

// NewOrchestrator creates an Orchestrator over a loaded configuration and a
// populated registry.
func NewOrchestrator(cfg *config.Configuration, registry *task.Registry, opts OrchestratorOptions) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		registry: registry,
		root:     opts.Root,
		vcs:      opts.VCS,
		reporter: opts.Reporter,
		logger:   opts.Logger,
	}
	if o.reporter == nil {
		o.reporter = NopReporter{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Run executes the hook's pipeline. A disabled hook succeeds with no results.
//
// Errors in pipeline shape or progress are returned together with the
// partial result; task failures are reported through the result only.
func (o *Orchestrator) Run(ctx context.Context, hook task.HookType) (*RunResult, error) {
	start := time.Now()
	settings := o.cfg.ForHook(hook)
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID), zap.String("hook", string(hook)))

	result := &RunResult{RunID: runID, Hook: hook, Scope: settings.FileScope}
	if !settings.Enabled {
		logger.Debug("hook disabled")
		result.Success = true
		return result, nil
	}

	ec, err := o.buildContext(settings)
	if err != nil {
		return result, err
	}
	result.Files = len(ec.Files)
	logger.Debug("execution context ready",
		zap.String("scope", string(ec.Scope)),
		zap.Int("files", len(ec.Files)),
		zap.String("fix_mode", string(ec.FixMode)),
		zap.Bool("ci", ec.CI))

	o.reporter.RunStarted(RunInfo{
		RunID:   runID,
		Hook:    hook,
		Scope:   ec.Scope,
		FixMode: ec.FixMode,
		Files:   len(ec.Files),
		CI:      ec.CI,
	})

	exec := NewExecutor(o.registry, ExecutorOptions{
		FailFast: settings.FailFast,
		Reporter: o.reporter,
		Logger:   logger,
	})

	var runErr error
	if settings.UsesStages() {
		result.Stages, runErr = exec.RunStages(ctx, settings.Stages, ec)
	} else {
		var stage StageResult
		stage, runErr = exec.RunTaskGraph(ctx, string(hook), settings.Tasks, settings.Parallel, ec)
		if runErr == nil {
			result.Stages = []StageResult{stage}
		}
	}

	// An aborted pipeline leaves the index untouched.
	restage := settings.Restage && !settings.CI && runErr == nil
	if err := o.finish(result, restage, start, logger); err != nil {
		runErr = errors.Join(runErr, err)
	}
	result.Success = runErr == nil && allSucceeded(result.Stages)
	o.reporter.RunFinished(result)
	return result, runErr
}

// FixOnly applies the fixes of every fixable task whose safety the mode
// permits, one task at a time in registration order, then restages. It uses
// the top-level file scope.
func (o *Orchestrator) FixOnly(ctx context.Context, mode task.FixMode) (*RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID), zap.String("fix_mode", string(mode)))

	settings := config.HookSettings{
		FileScope: o.cfg.FileScope,
		FixMode:   mode,
		Restage:   o.cfg.Restage,
		CI:        o.cfg.CI,
		BaseRef:   o.cfg.BaseBranch,
	}
	result := &RunResult{RunID: runID, Scope: settings.FileScope}

	ec, err := o.buildContext(settings)
	if err != nil {
		return result, err
	}
	result.Files = len(ec.Files)
	o.reporter.RunStarted(RunInfo{RunID: runID, Scope: ec.Scope, FixMode: mode, Files: len(ec.Files), CI: ec.CI})

	exec := NewExecutor(o.registry, ExecutorOptions{Reporter: o.reporter, Logger: logger})
	fixable := o.registry.Fixable()
	o.reporter.StageStarted(FixStageName, len(fixable))

	stageStart := time.Now()
	stage := StageResult{Name: FixStageName}
	for _, entry := range fixable {
		d := entry.Descriptor
		st := config.StageTask{ID: d.ID, Mode: task.ModeFixOnly}
		if !mode.Permits(d.FixSafety) {
			stage.Tasks = append(stage.Tasks, exec.skip(FixStageName, st,
				fmt.Sprintf("fix safety %s not permitted by fix mode %s", d.FixSafety, mode)))
			continue
		}
		if len(d.Patterns) > 0 && len(ec.FilesMatching(d.Patterns)) == 0 {
			stage.Tasks = append(stage.Tasks, exec.skip(FixStageName, st, ReasonNoMatchingFile))
			continue
		}
		o.reporter.TaskStarted(FixStageName, d.ID)
		run := exec.ExecuteTask(ctx, entry, task.ModeFixOnly, nil, ec)
		o.reporter.TaskFinished(FixStageName, run)
		stage.Tasks = append(stage.Tasks, run)
	}
	stage.Success = stageSuccess(stage.Tasks)
	stage.Duration = time.Since(stageStart)
	o.reporter.StageFinished(stage)
	result.Stages = []StageResult{stage}

	var runErr error
	if err := o.finish(result, settings.Restage && !settings.CI, start, logger); err != nil {
		runErr = err
	}
	result.Success = runErr == nil && stage.Success
	o.reporter.RunFinished(result)
	return result, runErr
}

// finish collects modified files, restages them in one batch and fills the
// summary.
func (o *Orchestrator) finish(result *RunResult, restage bool, start time.Time, logger *zap.Logger) error {
	result.ModifiedFiles = collectModified(result.Stages)

	var err error
	if restage && len(result.ModifiedFiles) > 0 {
		logger.Debug("restaging", zap.Strings("files", result.ModifiedFiles))
		if rerr := o.vcs.Restage(result.ModifiedFiles); rerr != nil {
			err = fmt.Errorf("restaging fixed files: %w", rerr)
		} else {
			result.Restaged = result.ModifiedFiles
		}
	}

	result.Duration = time.Since(start)
	result.Summary = summarize(result.Stages, result.ModifiedFiles, result.Duration)
	return err
}

// buildContext resolves the file scope through the version-control
// collaborator.
func (o *Orchestrator) buildContext(s config.HookSettings) (*task.ExecutionContext, error) {
	if o.vcs == nil || !o.vcs.IsRepository() {
		return nil, ErrNotRepository
	}

	ec := &task.ExecutionContext{
		Root:    o.root,
		Scope:   s.FileScope,
		Hook:    s.Hook,
		FixMode: s.FixMode,
		CI:      s.CI,
		BaseRef: s.BaseRef,
		VCS:     o.vcs,
		Fixed:   &task.FixedFiles{},
	}

	var err error
	switch s.FileScope {
	case task.ScopeStaged:
		ec.StagedFiles, err = o.vcs.StagedFiles()
		for _, f := range ec.StagedFiles {
			if f.Status != "D" {
				ec.Files = append(ec.Files, f.Path)
			}
		}
	case task.ScopeChanged:
		ec.ChangedFiles, err = o.vcs.ChangedFilesSince(s.BaseRef)
		ec.Files = ec.ChangedFiles
	case task.ScopeDiff:
		ec.Files, err = o.vcs.WorkingTreeChanges()
	case task.ScopeAll:
		ec.Files, err = o.vcs.TrackedFiles()
	default:
		return nil, fmt.Errorf("unknown file scope %q", s.FileScope)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s files: %w", s.FileScope, err)
	}
	return ec, nil
}

func allSucceeded(stages []StageResult) bool {
	for _, s := range stages {
		if !s.Success {
			return false
		}
	}
	return true
}
