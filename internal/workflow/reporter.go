package workflow

import (
	"github.com/ariel-frischer/gatehook/internal/task"
)

// RunInfo describes a run as it starts.
type RunInfo struct {
	RunID   string
	Hook    task.HookType
	Scope   task.FileScope
	FixMode task.FixMode
	Files   int
	CI      bool
}

// Reporter observes run lifecycle events. Tasks and stages of one parallel
// group report concurrently, so implementations must be safe for concurrent
// use. Reporters never influence scheduling.
type Reporter interface {
	RunStarted(info RunInfo)
	StageStarted(stage string, tasks int)
	TaskStarted(stage, taskID string)
	TaskFinished(stage string, run TaskRun)
	StageFinished(result StageResult)
	RunFinished(result *RunResult)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) RunStarted(RunInfo) {}
func (NopReporter) StageStarted(string, int) {}
func (NopReporter) TaskStarted(string, string) {}
func (NopReporter) TaskFinished(string, TaskRun) {}
func (NopReporter) StageFinished(StageResult) {}
func (NopReporter) RunFinished(*RunResult) {}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(info RunInfo) {
	for _, r := range m {
		r.RunStarted(info)
	}
}

func (m MultiReporter) StageStarted(stage string, tasks int) {
	for _, r := range m {
		r.StageStarted(stage, tasks)
	}
}

func (m MultiReporter) TaskStarted(stage, taskID string) {
	for _, r := range m {
		r.TaskStarted(stage, taskID)
	}
}

func (m MultiReporter) TaskFinished(stage string, run TaskRun) {
	for _, r := range m {
		r.TaskFinished(stage, run)
	}
}

func (m MultiReporter) StageFinished(result StageResult) {
	for _, r := range m {
		r.StageFinished(result)
	}
}

func (m MultiReporter) RunFinished(result *RunResult) {
	for _, r := range m {
		r.RunFinished(result)
	}
}
