package git

import "github.com/ariel-frischer/gatehook/internal/task"

// StagedFile is a path with its staging code.
type StagedFile = task.StagedFile

var _ task.VCS = (*Repository)(nil)
