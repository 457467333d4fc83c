package task

import (
	"context"
	"slices"
)

// Descriptor is the immutable execution contract a task advertises.
type Descriptor struct {
	ID   string
	Name string
	// Hooks lists the hook types the task applies to. Empty means all hooks.
	Hooks       []HookType
	SupportsFix bool
	FixSafety   FixSafety
	// Blocking is the default blocking behavior; configuration may override it.
	Blocking bool
	// Patterns restricts the task to matching files. Empty means every file.
	Patterns []string
}

// AppliesTo reports whether the task runs for the given hook.
func (d Descriptor) AppliesTo(hook HookType) bool {
	return len(d.Hooks) == 0 || slices.Contains(d.Hooks, hook)
}

// clone returns a deep copy so registry entries cannot be mutated through
// slices shared with the caller.
func (d Descriptor) clone() Descriptor {
	d.Hooks = slices.Clone(d.Hooks)
	d.Patterns = slices.Clone(d.Patterns)
	return d
}

// Task is a pluggable unit of work with a check operation.
// Implementations must be safe for concurrent use across runs.
type Task interface {
	Descriptor() Descriptor
	Run(ctx context.Context, ec *ExecutionContext) (Result, error)
}

// Fixer is implemented by tasks that can apply automatic fixes.
// A task whose descriptor sets SupportsFix must implement it.
type Fixer interface {
	Fix(ctx context.Context, ec *ExecutionContext) (FixResult, error)
}

// Fix invokes t's fix operation, or returns an empty FixResult when t cannot fix.
func Fix(ctx context.Context, t Task, ec *ExecutionContext) (FixResult, error) {
	f, ok := t.(Fixer)
	if !ok {
		return FixResult{}, nil
	}
	return f.Fix(ctx, ec)
}
