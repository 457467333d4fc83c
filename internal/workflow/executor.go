// Package workflow executes hook pipelines: the single-task protocol, stage
// execution, the stage scheduling loop, flat task waves, and the run
// orchestrator that wraps them with file scope resolution and restaging.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/dag"
	"github.com/ariel-frischer/gatehook/internal/task"
	"go.uber.org/zap"
)

// Skip reasons reported by the executor.
const (
	ReasonFailFast       = "fail-fast"
	ReasonNoMatchingFile = "no matching files"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// FailFast stops a sequential stage after its first blocking failure.
	FailFast bool
	Reporter Reporter
	Logger   *zap.Logger
}

// Executor runs tasks and stages against a registry.
type Executor struct {
	registry *task.Registry
	failFast bool
	reporter Reporter
	logger   *zap.Logger
}

// NewExecutor creates an Executor. Nil reporter and logger are replaced by
// no-op implementations.
func NewExecutor(registry *task.Registry, opts ExecutorOptions) *Executor {
	e := &Executor{
		registry: registry,
		failFast: opts.FailFast,
		reporter: opts.Reporter,
		logger:   opts.Logger,
	}
	if e.reporter == nil {
		e.reporter = NopReporter{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// ExecuteTask applies the mode protocol to one task:
//   - check runs the check operation with fixes disabled
//   - fix runs the fix operation when permitted, then the check operation
//   - fixOnly runs only the fix operation and reports passed
//
// Errors and panics from either operation become a failed result.
func (e *Executor) ExecuteTask(ctx context.Context, entry task.Entry, mode task.Mode, blocking *bool, ec *task.ExecutionContext) TaskRun {
	start := time.Now()
	d := entry.Descriptor
	run := TaskRun{TaskID: d.ID, Name: d.Name, Mode: mode, Blocking: d.Blocking}
	if blocking != nil {
		run.Blocking = *blocking
	}

	fixMode := ec.FixMode
	if mode == task.ModeCheck {
		fixMode = task.FixNone
	}
	ec = ec.WithFixMode(fixMode)

	if mode != task.ModeCheck && d.SupportsFix && fixMode.Permits(d.FixSafety) {
		e.logger.Debug("invoking fix",
			zap.String("task", d.ID),
			zap.String("fix_mode", string(fixMode)),
			zap.String("fix_safety", string(d.FixSafety)))
		fr, err := callFix(ctx, entry.Task, d.ID, ec)
		if err != nil {
			run.Result = task.ErrorResult(err)
			run.Result.Duration = time.Since(start)
			return run
		}
		run.Fix = &fr
		ec.Fixed.Add(fr.ModifiedFiles...)
	}

	if mode == task.ModeFixOnly {
		modified := 0
		if run.Fix != nil {
			modified = len(run.Fix.ModifiedFiles)
		}
		run.Result = task.Passed(modified)
	} else {
		res, err := callRun(ctx, entry.Task, d.ID, ec)
		if err != nil {
			res = task.ErrorResult(err)
		}
		run.Result = res
	}

	if run.Fix != nil {
		for _, msg := range run.Fix.Errors {
			run.Result.Diagnostics = append(run.Result.Diagnostics, task.Diagnostic{
				Message:  "fix: " + msg,
				Severity: task.SeverityWarning,
				Rule:     d.ID,
			})
		}
	}
	if run.Result.Duration == 0 {
		run.Result.Duration = time.Since(start)
	}
	return run
}

func callRun(ctx context.Context, t task.Task, id string, ec *task.ExecutionContext) (res task.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", id, r)
		}
	}()
	return t.Run(ctx, ec)
}

func callFix(ctx context.Context, t task.Task, id string, ec *task.ExecutionContext) (fr task.FixResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s fix panicked: %v", id, r)
		}
	}()
	return task.Fix(ctx, t, ec)
}

// runUnit executes a resolved stage task with reporting, applicability and
// file pattern gating, and per-task options.
func (e *Executor) runUnit(ctx context.Context, stage string, st config.StageTask, ec *task.ExecutionContext) TaskRun {
	entry, _ := e.registry.Lookup(st.ID)
	d := entry.Descriptor
	e.reporter.TaskStarted(stage, d.ID)

	var run TaskRun
	switch {
	case ec.Hook != "" && !d.AppliesTo(ec.Hook):
		run = skippedRun(d, st, "not applicable to "+string(ec.Hook))
	case len(d.Patterns) > 0 && len(ec.FilesMatching(d.Patterns)) == 0:
		run = skippedRun(d, st, ReasonNoMatchingFile)
	default:
		run = e.ExecuteTask(ctx, entry, st.Mode, st.Blocking, ec.WithOptions(st.Options))
	}

	e.logger.Debug("task finished",
		zap.String("stage", stage),
		zap.String("task", d.ID),
		zap.String("mode", string(st.Mode)),
		zap.String("status", string(run.Result.Status)),
		zap.Duration("duration", run.Result.Duration))
	e.reporter.TaskFinished(stage, run)
	return run
}

func skippedRun(d task.Descriptor, st config.StageTask, reason string) TaskRun {
	blocking := d.Blocking
	if st.Blocking != nil {
		blocking = *st.Blocking
	}
	return TaskRun{
		TaskID:   d.ID,
		Name:     d.Name,
		Mode:     st.Mode,
		Blocking: blocking,
		Result:   task.Skipped(reason),
	}
}

// unknownTaskRuns returns a failed run per task id missing from the registry.
func (e *Executor) unknownTaskRuns(ids []string) []TaskRun {
	var runs []TaskRun
	for _, id := range ids {
		if e.registry.Has(id) {
			continue
		}
		runs = append(runs, TaskRun{
			TaskID:   id,
			Name:     id,
			Blocking: true,
			Result: task.Failed(0, task.Diagnostic{
				Message:  fmt.Sprintf("unknown task %q", id),
				Severity: task.SeverityError,
				Rule:     "config",
			}),
		})
	}
	return runs
}

// RunStage executes one stage. Unknown task ids fail the stage before any
// task starts.
func (e *Executor) RunStage(ctx context.Context, stage config.HookStage, ec *task.ExecutionContext) StageResult {
	start := time.Now()
	e.reporter.StageStarted(stage.Name, len(stage.Tasks))

	result := StageResult{Name: stage.Name, ContinueOnError: stage.ContinueOnError}

	ids := make([]string, len(stage.Tasks))
	for i, st := range stage.Tasks {
		ids[i] = st.ID
	}

	switch unknown := e.unknownTaskRuns(ids); {
	case len(unknown) > 0:
		result.Tasks = unknown
		for _, run := range unknown {
			e.reporter.TaskFinished(stage.Name, run)
		}
	case stage.Parallel:
		units := make([]func(context.Context) TaskRun, len(stage.Tasks))
		for i, st := range stage.Tasks {
			units[i] = func(ctx context.Context) TaskRun {
				return e.runUnit(ctx, stage.Name, st, ec)
			}
		}
		result.Tasks = dag.RunConcurrently(ctx, units)
	default:
		result.Tasks = e.runSequential(ctx, stage.Name, stage.Tasks, ec)
	}

	result.Success = stageSuccess(result.Tasks)
	result.Duration = time.Since(start)
	e.reporter.StageFinished(result)
	return result
}

func (e *Executor) runSequential(ctx context.Context, stage string, tasks []config.StageTask, ec *task.ExecutionContext) []TaskRun {
	runs := make([]TaskRun, 0, len(tasks))
	for i, st := range tasks {
		run := e.runUnit(ctx, stage, st, ec)
		runs = append(runs, run)
		if e.failFast && run.BlockingFailure() {
			runs = append(runs, e.skipRemaining(stage, tasks[i+1:], ReasonFailFast)...)
			break
		}
	}
	return runs
}

func (e *Executor) skipRemaining(stage string, tasks []config.StageTask, reason string) []TaskRun {
	runs := make([]TaskRun, 0, len(tasks))
	for _, st := range tasks {
		runs = append(runs, e.skip(stage, st, reason))
	}
	return runs
}

// skip reports a task that never started.
func (e *Executor) skip(stage string, st config.StageTask, reason string) TaskRun {
	entry, _ := e.registry.Lookup(st.ID)
	run := skippedRun(entry.Descriptor, st, reason)
	e.reporter.TaskFinished(stage, run)
	return run
}

// RunStages drives a stage pipeline to completion. A stage becomes ready
// once each dependency completed successfully, or completed with a failure
// while the stage itself sets continue_on_error. Several ready stages run
// concurrently as one group.
//
// Shape errors (missing dependency, cycle) return before any stage runs. A
// pipeline that cannot progress returns the results so far with a
// *dag.BlockedError.
func (e *Executor) RunStages(ctx context.Context, stages []config.HookStage, ec *task.ExecutionContext) ([]StageResult, error) {
	g, err := dag.New("stage", stages)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]bool, len(stages))
	for _, s := range stages {
		pending[s.Name] = true
	}
	completed := make(map[string]StageResult, len(stages))
	results := make([]StageResult, 0, len(stages))

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		ready := g.Ready(pending, func(s config.HookStage, dep string) bool {
			r, done := completed[dep]
			return done && (r.Success || s.ContinueOnError)
		})
		if len(ready) == 0 {
			return results, blockedStage(g, pending, completed)
		}

		names := make([]string, len(ready))
		for i, s := range ready {
			names[i] = s.Name
		}
		e.logger.Debug("stages ready", zap.Strings("stages", names))

		var batch []StageResult
		if len(ready) == 1 {
			batch = []StageResult{e.RunStage(ctx, ready[0], ec)}
		} else {
			units := make([]func(context.Context) StageResult, len(ready))
			for i, s := range ready {
				units[i] = func(ctx context.Context) StageResult {
					return e.RunStage(ctx, s, ec)
				}
			}
			batch = dag.RunConcurrently(ctx, units)
		}

		for _, r := range batch {
			completed[r.Name] = r
			delete(pending, r.Name)
			results = append(results, r)
		}
	}

	return results, nil
}

// blockedStage names the first pending stage with a failed dependency, or
// the first pending stage when none matches.
func blockedStage(g *dag.Graph[config.HookStage], pending map[string]bool, completed map[string]StageResult) error {
	var first string
	for _, s := range g.Nodes() {
		if !pending[s.Name] {
			continue
		}
		if first == "" {
			first = s.Name
		}
		for _, dep := range s.DependsOn {
			if r, done := completed[dep]; done && !r.Success {
				return &dag.BlockedError{Kind: g.Kind(), Node: s.Name, FailedDependency: dep}
			}
		}
	}
	return &dag.BlockedError{Kind: g.Kind(), Node: first}
}

// RunTaskGraph executes a flat task list as one stage named name. Tasks are
// grouped into waves; a wave runs concurrently when parallel is set.
//
// A task whose dependency failed while blocking, without that dependency's
// continue_on_error, is skipped, and so are its own dependents. Failures of
// non-blocking tasks satisfy dependents like success.
func (e *Executor) RunTaskGraph(ctx context.Context, name string, specs []config.TaskSpec, parallel bool, ec *task.ExecutionContext) (StageResult, error) {
	g, err := dag.New("task", specs)
	if err != nil {
		return StageResult{}, err
	}
	waves, err := g.Waves(parallel)
	if err != nil {
		return StageResult{}, err
	}

	start := time.Now()
	e.reporter.StageStarted(name, len(specs))
	result := StageResult{Name: name}

	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	if unknown := e.unknownTaskRuns(ids); len(unknown) > 0 {
		result.Tasks = unknown
		for _, run := range unknown {
			e.reporter.TaskFinished(name, run)
		}
		result.Duration = time.Since(start)
		e.reporter.StageFinished(result)
		return result, nil
	}

	runs := make(map[string]TaskRun, len(specs))
	// unsatisfied holds tasks whose outcome blocks their dependents.
	unsatisfied := make(map[string]bool)
	stopped := false

	for i, wave := range waves {
		e.logger.Debug("task wave", zap.String("stage", name), zap.Int("wave", i), zap.Int("tasks", len(wave)))

		var toRun []config.TaskSpec
		for _, spec := range wave {
			st := stageTask(spec)
			if stopped {
				runs[spec.ID] = e.skip(name, st, ReasonFailFast)
				continue
			}
			if dep := firstUnsatisfied(spec, unsatisfied); dep != "" {
				runs[spec.ID] = e.skip(name, st, "dependency "+dep+" failed")
				unsatisfied[spec.ID] = true
				continue
			}
			toRun = append(toRun, spec)
		}

		units := make([]func(context.Context) TaskRun, len(toRun))
		for j, spec := range toRun {
			units[j] = func(ctx context.Context) TaskRun {
				return e.runUnit(ctx, name, stageTask(spec), ec)
			}
		}
		for j, run := range dag.RunConcurrently(ctx, units) {
			spec := toRun[j]
			runs[spec.ID] = run
			if run.BlockingFailure() {
				if !spec.ContinueOnError {
					unsatisfied[spec.ID] = true
				}
				if e.failFast {
					stopped = true
				}
			}
		}
	}

	result.Tasks = make([]TaskRun, 0, len(specs))
	for _, s := range specs {
		result.Tasks = append(result.Tasks, runs[s.ID])
	}
	result.Success = stageSuccess(result.Tasks)
	result.Duration = time.Since(start)
	e.reporter.StageFinished(result)
	return result, nil
}

func stageTask(s config.TaskSpec) config.StageTask {
	return config.StageTask{ID: s.ID, Mode: s.Mode, Options: s.Options, Blocking: s.Blocking}
}

func firstUnsatisfied(spec config.TaskSpec, unsatisfied map[string]bool) string {
	for _, dep := range spec.DependsOn {
		if unsatisfied[dep] {
			return dep
		}
	}
	return ""
}
