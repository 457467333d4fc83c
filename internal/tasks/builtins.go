package tasks

import (
	"fmt"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

// Builtins returns the native tasks in registration order.
func Builtins(fsys afero.Fs) []task.Task {
	return []task.Task{
		NewMergeConflict(fsys),
		NewLargeFiles(fsys),
		NewTrailingWhitespace(fsys),
		NewEndOfFile(fsys),
		NewGofmt(fsys),
	}
}

// NewRegistry registers the built-ins followed by the custom tasks. A custom
// task may not reuse a built-in id.
func NewRegistry(custom []config.CustomTask, fsys afero.Fs, runner CommandRunner) (*task.Registry, error) {
	all := Builtins(fsys)
	for _, ct := range custom {
		st, err := NewShellTask(ct, fsys, runner)
		if err != nil {
			return nil, err
		}
		all = append(all, st)
	}
	reg, err := task.NewRegistry(all...)
	if err != nil {
		return nil, fmt.Errorf("building task registry: %w", err)
	}
	return reg, nil
}
