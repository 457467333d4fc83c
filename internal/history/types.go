// Package history records gate runs so recent outcomes can be reviewed with
// "gatehook history".
package history

import "time"

// FileName is the history file name inside the state directory.
const FileName = "history.yml"

// Entry is one recorded run.
type Entry struct {
	Timestamp time.Time `yaml:"timestamp"`
	RunID     string    `yaml:"run_id"`
	// Repo is the work tree root the run executed in.
	Repo string `yaml:"repo"`
	// Hook is the hook name, or "fix" for a fix-only run.
	Hook     string `yaml:"hook"`
	Scope    string `yaml:"scope,omitempty"`
	Files    int    `yaml:"files"`
	Success  bool   `yaml:"success"`
	ExitCode int    `yaml:"exit_code"`
	Passed   int    `yaml:"passed"`
	Failed   int    `yaml:"failed"`
	Warning  int    `yaml:"warning"`
	Skipped  int    `yaml:"skipped"`
	Fixed    int    `yaml:"fixed,omitempty"`
	Restaged int    `yaml:"restaged,omitempty"`
	Duration string `yaml:"duration"`
}

// File is the on-disk history document. Entries are oldest first.
type File struct {
	Entries []Entry `yaml:"entries"`
}
