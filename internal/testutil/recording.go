// Package testutil provides test doubles shared by gatehook package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariel-frischer/gatehook/internal/task"
)

// Method names recorded in a CallLog.
const (
	MethodRun = "run"
	MethodFix = "fix"
)

// CallRecord is a single invocation of a recording task.
type CallRecord struct {
	TaskID    string
	Method    string
	Timestamp time.Time
}

// String renders the record as "id.method".
func (r CallRecord) String() string {
	return r.TaskID + "." + r.Method
}

// CallLog collects calls across tasks in invocation order. Safe for
// concurrent use.
type CallLog struct {
	mu    sync.Mutex
	calls []CallRecord
}

func (l *CallLog) record(id, method string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, CallRecord{TaskID: id, Method: method, Timestamp: time.Now()})
}

// Calls returns a copy of every recorded call.
func (l *CallLog) Calls() []CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CallRecord, len(l.calls))
	copy(out, l.calls)
	return out
}

// Sequence returns the calls rendered as "id.method".
func (l *CallLog) Sequence() []string {
	calls := l.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Methods returns the methods invoked on one task, in order.
func (l *CallLog) Methods(taskID string) []string {
	var out []string
	for _, c := range l.Calls() {
		if c.TaskID == taskID {
			out = append(out, c.Method)
		}
	}
	return out
}

// Ran reports whether the task's check operation was invoked.
func (l *CallLog) Ran(taskID string) bool {
	for _, m := range l.Methods(taskID) {
		if m == MethodRun {
			return true
		}
	}
	return false
}

// Touched reports whether any operation of the task was invoked.
func (l *CallLog) Touched(taskID string) bool {
	return len(l.Methods(taskID)) > 0
}

// RecordingTask is a configurable task double that logs every call.
// Configure its fields before the task is shared with a run.
type RecordingTask struct {
	Desc task.Descriptor
	Log  *CallLog

	// Result and RunErr are returned by Run.
	Result task.Result
	RunErr error
	// FixOutcome and FixErr are returned by Fix.
	FixOutcome task.FixResult
	FixErr     error
	// Panic, when non-nil, is raised by Run.
	Panic any
	// Delay is slept in both operations, honoring context cancellation.
	Delay time.Duration

	mu       sync.Mutex
	contexts []*task.ExecutionContext
}

// NewRecordingTask creates a blocking, safely fixable task that passes.
func NewRecordingTask(id string, log *CallLog) *RecordingTask {
	if log == nil {
		log = &CallLog{}
	}
	return &RecordingTask{
		Desc: task.Descriptor{
			ID:          id,
			Name:        id,
			SupportsFix: true,
			FixSafety:   task.SafetySafe,
			Blocking:    true,
		},
		Log:    log,
		Result: task.Passed(1),
	}
}

// Failing configures the task to report a failed result.
func (r *RecordingTask) Failing() *RecordingTask {
	r.Result = task.Failed(1, task.Diagnostic{Message: r.Desc.ID + " failed", Severity: task.SeverityError})
	return r
}

// NonBlocking clears the blocking default.
func (r *RecordingTask) NonBlocking() *RecordingTask {
	r.Desc.Blocking = false
	return r
}

// WithDelay sets the simulated duration of each operation.
func (r *RecordingTask) WithDelay(d time.Duration) *RecordingTask {
	r.Delay = d
	return r
}

// WithSafety sets the fix safety classification.
func (r *RecordingTask) WithSafety(s task.FixSafety) *RecordingTask {
	r.Desc.FixSafety = s
	return r
}

// Modifies makes Fix report the given files as modified.
func (r *RecordingTask) Modifies(files ...string) *RecordingTask {
	r.FixOutcome = task.FixResult{ModifiedFiles: files, FixesApplied: len(files)}
	return r
}

func (r *RecordingTask) Descriptor() task.Descriptor { return r.Desc }

func (r *RecordingTask) Run(ctx context.Context, ec *task.ExecutionContext) (task.Result, error) {
	r.observe(MethodRun, ec)
	if err := r.sleep(ctx); err != nil {
		return task.Result{}, err
	}
	if r.Panic != nil {
		panic(r.Panic)
	}
	return r.Result, r.RunErr
}

func (r *RecordingTask) Fix(ctx context.Context, ec *task.ExecutionContext) (task.FixResult, error) {
	r.observe(MethodFix, ec)
	if err := r.sleep(ctx); err != nil {
		return task.FixResult{}, err
	}
	return r.FixOutcome, r.FixErr
}

// Contexts returns the execution contexts passed to the task.
func (r *RecordingTask) Contexts() []*task.ExecutionContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*task.ExecutionContext(nil), r.contexts...)
}

func (r *RecordingTask) observe(method string, ec *task.ExecutionContext) {
	r.mu.Lock()
	r.contexts = append(r.contexts, ec)
	r.mu.Unlock()
	r.Log.record(r.Desc.ID, method)
}

func (r *RecordingTask) sleep(ctx context.Context) error {
	if r.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s interrupted: %w", r.Desc.ID, ctx.Err())
	}
}

// MustRegistry builds a registry from tasks and panics on error.
func MustRegistry(tasks ...task.Task) *task.Registry {
	reg, err := task.NewRegistry(tasks...)
	if err != nil {
		panic(err)
	}
	return reg
}
