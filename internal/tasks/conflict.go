package tasks

import (
	"bytes"
	"context"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

var conflictMarkers = [][]byte{
	[]byte("<<<<<<< "),
	[]byte("======="),
	[]byte(">>>>>>> "),
}

// MergeConflict reports leftover merge conflict markers.
type MergeConflict struct{ base }

// NewMergeConflict creates the merge-conflict task.
func NewMergeConflict(fsys afero.Fs) *MergeConflict {
	return &MergeConflict{base{
		fs: fsys,
		desc: task.Descriptor{
			ID:       "merge-conflict",
			Name:     "Merge conflict markers",
			Blocking: true,
		},
	}}
}

// Run scans files for conflict marker lines.
func (t *MergeConflict) Run(_ context.Context, ec *task.ExecutionContext) (task.Result, error) {
	files, err := t.checkText(ec, t.targets(ec))
	if err != nil {
		return task.Result{}, err
	}
	var diags []task.Diagnostic
	for _, f := range files {
		for i, line := range bytes.Split(f.Content, []byte("\n")) {
			if !isConflictMarker(bytes.TrimSuffix(line, []byte("\r"))) {
				continue
			}
			diags = append(diags, task.Diagnostic{
				File:     f.Path,
				Line:     i + 1,
				Column:   1,
				Message:  "merge conflict marker",
				Severity: task.SeverityError,
				Rule:     t.desc.ID,
			})
		}
	}
	return task.FromDiagnostics(len(files), diags), nil
}

// isConflictMarker matches "<<<<<<< ref", ">>>>>>> ref" and a bare "=======".
func isConflictMarker(line []byte) bool {
	if bytes.Equal(line, conflictMarkers[1]) {
		return true
	}
	return bytes.HasPrefix(line, conflictMarkers[0]) || bytes.HasPrefix(line, conflictMarkers[2])
}
