package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

// DefaultMaxKB is the large-files limit when no max_kb option is set.
const DefaultMaxKB = 500

// LargeFiles rejects files above a size limit.
type LargeFiles struct{ base }

// NewLargeFiles creates the large-files task.
func NewLargeFiles(fsys afero.Fs) *LargeFiles {
	return &LargeFiles{base{
		fs: fsys,
		desc: task.Descriptor{
			ID:       "large-files",
			Name:     "Large files",
			Blocking: true,
		},
	}}
}

// Run checks the size of every file in scope against the max_kb option.
func (t *LargeFiles) Run(_ context.Context, ec *task.ExecutionContext) (task.Result, error) {
	maxKB := ec.OptionInt("max_kb", DefaultMaxKB)
	limit := int64(maxKB) * 1024

	checked := 0
	var diags []task.Diagnostic
	for _, p := range t.targets(ec) {
		size, ok, err := t.size(ec, p)
		if err != nil {
			return task.Result{}, err
		}
		if !ok {
			continue
		}
		checked++
		if size <= limit {
			continue
		}
		diags = append(diags, task.Diagnostic{
			File:     p,
			Message:  fmt.Sprintf("file is %d KB, limit is %d KB", (size+1023)/1024, maxKB),
			Severity: task.SeverityError,
			Rule:     t.desc.ID,
		})
	}
	return task.FromDiagnostics(checked, diags), nil
}

// size returns the byte size of p as staged, or in the working tree outside
// the staged scope. ok is false for missing files and directories.
func (t *LargeFiles) size(ec *task.ExecutionContext, p string) (int64, bool, error) {
	if ec.ReadsIndex(p) {
		content, err := ec.VCS.StagedContent(p)
		if err != nil {
			return 0, false, fmt.Errorf("reading staged %s: %w", p, err)
		}
		return int64(len(content)), true, nil
	}
	info, err := t.fs.Stat(ec.AbsPath(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if info.IsDir() {
		return 0, false, nil
	}
	return info.Size(), true, nil
}
