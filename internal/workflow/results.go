package workflow

import (
	"time"

	"github.com/ariel-frischer/gatehook/internal/task"
)

// TaskRun is the outcome of one task within a stage.
type TaskRun struct {
	TaskID   string
	Name     string
	Mode     task.Mode
	Blocking bool
	Result   task.Result
	// Fix is set when the fix operation was invoked.
	Fix *task.FixResult
}

// BlockingFailure reports whether the run fails its stage.
func (r TaskRun) BlockingFailure() bool {
	return r.Blocking && r.Result.Status == task.StatusFailed
}

// StageResult aggregates the task runs of one stage.
type StageResult struct {
	Name            string
	Tasks           []TaskRun
	Success         bool
	ContinueOnError bool
	Duration        time.Duration
}

// stageSuccess is false iff some task failed while blocking.
func stageSuccess(runs []TaskRun) bool {
	for _, r := range runs {
		if r.BlockingFailure() {
			return false
		}
	}
	return true
}

// Summary counts task outcomes across a run.
type Summary struct {
	Passed        int
	Failed        int
	Warning       int
	Skipped       int
	FixesApplied  int
	ModifiedFiles int
	Duration      time.Duration
}

// Total is the number of task runs counted.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Warning + s.Skipped
}

// RunResult is everything one orchestrator invocation produced.
type RunResult struct {
	RunID  string
	Hook   task.HookType
	Scope  task.FileScope
	Files  int
	Stages []StageResult
	// ModifiedFiles lists every file a fix reported as modified, deduplicated
	// in first-seen order.
	ModifiedFiles []string
	// Restaged is the file set handed to the version-control collaborator.
	Restaged []string
	Success  bool
	Summary  Summary
	Duration time.Duration
}

// TaskRuns flattens the task runs of every stage in stage order.
func (r *RunResult) TaskRuns() []TaskRun {
	var out []TaskRun
	for _, s := range r.Stages {
		out = append(out, s.Tasks...)
	}
	return out
}

// Stage returns the named stage result.
func (r *RunResult) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

func summarize(stages []StageResult, modified []string, d time.Duration) Summary {
	s := Summary{ModifiedFiles: len(modified), Duration: d}
	for _, st := range stages {
		for _, r := range st.Tasks {
			switch r.Result.Status {
			case task.StatusPassed:
				s.Passed++
			case task.StatusFailed:
				s.Failed++
			case task.StatusWarning:
				s.Warning++
			case task.StatusSkipped:
				s.Skipped++
			}
			if r.Fix != nil {
				s.FixesApplied += r.Fix.FixesApplied
			}
		}
	}
	return s
}

// collectModified gathers fix-modified files in first-seen order.
func collectModified(stages []StageResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range stages {
		for _, r := range st.Tasks {
			if r.Fix == nil {
				continue
			}
			for _, f := range r.Fix.ModifiedFiles {
				if !seen[f] {
					seen[f] = true
					out = append(out, f)
				}
			}
		}
	}
	return out
}
