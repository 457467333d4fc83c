package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/ariel-frischer/gatehook/internal/workflow"
	"github.com/spf13/afero"
)

// Writer appends entries to the history file with automatic pruning.
type Writer struct {
	fs afero.Fs
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain. Zero keeps all.
	MaxEntries int

	mu sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(fs afero.Fs, stateDir string, maxEntries int) *Writer {
	return &Writer{
		fs:         fs,
		StateDir:   stateDir,
		MaxEntries: maxEntries,
	}
}

// LogEntry loads the history, appends entry, prunes the oldest entries over
// the limit and saves.
func (w *Writer) LogEntry(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := Load(w.fs, w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	f.Entries = append(f.Entries, entry)
	if w.MaxEntries > 0 && len(f.Entries) > w.MaxEntries {
		excess := len(f.Entries) - w.MaxEntries
		f.Entries = f.Entries[excess:]
	}

	if err := Save(w.fs, w.StateDir, f); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// LogRun records a finished run.
func (w *Writer) LogRun(repo string, result *workflow.RunResult, exitCode int) error {
	return w.LogEntry(EntryFromRun(repo, result, exitCode, time.Now()))
}

// EntryFromRun converts a run result into a history entry.
func EntryFromRun(repo string, result *workflow.RunResult, exitCode int, at time.Time) Entry {
	hook := string(result.Hook)
	if hook == "" {
		hook = "fix"
	}
	s := result.Summary
	return Entry{
		Timestamp: at,
		RunID:     result.RunID,
		Repo:      repo,
		Hook:      hook,
		Scope:     string(result.Scope),
		Files:     result.Files,
		Success:   result.Success,
		ExitCode:  exitCode,
		Passed:    s.Passed,
		Failed:    s.Failed,
		Warning:   s.Warning,
		Skipped:   s.Skipped,
		Fixed:     s.FixesApplied,
		Restaged:  len(result.Restaged),
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}
}

// Filter keeps entries matching repo and hook (empty matches any) and then
// the most recent limit entries when limit is positive.
func Filter(entries []Entry, repo, hook string, limit int) []Entry {
	var out []Entry
	for _, e := range entries {
		if repo != "" && e.Repo != repo {
			continue
		}
		if hook != "" && e.Hook != hook {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
