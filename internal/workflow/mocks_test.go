package workflow

import (
	"slices"
	"sync"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/ariel-frischer/gatehook/internal/testutil"
)

// fakeVCS serves fixed file lists and records restage calls.
type fakeVCS struct {
	mu         sync.Mutex
	notRepo    bool
	staged     []task.StagedFile
	changed    []string
	diff       []string
	tracked    []string
	err        error
	restageErr error
	baseRefs   []string
	restaged   [][]string
}

func (f *fakeVCS) IsRepository() bool { return !f.notRepo }

func (f *fakeVCS) StagedFiles() ([]task.StagedFile, error) { return f.staged, f.err }

func (f *fakeVCS) StagedContent(string) (string, error) { return "", f.err }

func (f *fakeVCS) ChangedFilesSince(baseRef string) ([]string, error) {
	f.mu.Lock()
	f.baseRefs = append(f.baseRefs, baseRef)
	f.mu.Unlock()
	return f.changed, f.err
}

func (f *fakeVCS) WorkingTreeChanges() ([]string, error) { return f.diff, f.err }

func (f *fakeVCS) TrackedFiles() ([]string, error) { return f.tracked, f.err }

func (f *fakeVCS) Restage(paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaged = append(f.restaged, slices.Clone(paths))
	return f.restageErr
}

func (f *fakeVCS) restageCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.restaged)
}

// eventReporter records lifecycle events as strings.
type eventReporter struct {
	mu     sync.Mutex
	events []string
	final  *RunResult
}

func (r *eventReporter) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventReporter) RunStarted(info RunInfo) { r.add("run:start") }
func (r *eventReporter) StageStarted(stage string, _ int) { r.add("stage:start:" + stage) }
func (r *eventReporter) TaskStarted(stage, id string) { r.add("task:start:" + stage + "/" + id) }
func (r *eventReporter) TaskFinished(stage string, run TaskRun) {
	r.add("task:done:" + stage + "/" + run.TaskID + ":" + string(run.Result.Status))
}
func (r *eventReporter) StageFinished(res StageResult) { r.add("stage:done:" + res.Name) }
func (r *eventReporter) RunFinished(res *RunResult) {
	r.mu.Lock()
	r.final = res
	r.mu.Unlock()
	r.add("run:done")
}

func (r *eventReporter) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func entryFor(t task.Task) task.Entry {
	reg := testutil.MustRegistry(t)
	e, _ := reg.Lookup(t.Descriptor().ID)
	return e
}

func stage(name string, parallel bool, deps []string, ids ...string) config.HookStage {
	s := config.HookStage{Name: name, Parallel: parallel, DependsOn: deps}
	for _, id := range ids {
		s.Tasks = append(s.Tasks, config.StageTask{ID: id, Mode: task.ModeCheck})
	}
	return s
}

func spec(id string, deps ...string) config.TaskSpec {
	return config.TaskSpec{ID: id, Mode: task.ModeCheck, DependsOn: deps}
}

func baseContext() *task.ExecutionContext {
	return &task.ExecutionContext{
		Root:    "/repo",
		Scope:   task.ScopeStaged,
		Files:   []string{"main.go", "README.md"},
		Hook:    task.HookPreCommit,
		FixMode: task.FixSafe,
	}
}

func boolPtr(b bool) *bool { return &b }
