package task

import (
	"fmt"
	"time"
)

// Status is the outcome of a single task execution.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a single finding reported by a task.
// File, Line, Column and Rule are optional.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule,omitempty"`
	Fixable  bool     `json:"fixable,omitempty"`
}

// String renders the diagnostic as "file:line:col: [severity] message (rule)".
func (d Diagnostic) String() string {
	loc := ""
	switch {
	case d.File != "" && d.Line > 0 && d.Column > 0:
		loc = fmt.Sprintf("%s:%d:%d: ", d.File, d.Line, d.Column)
	case d.File != "" && d.Line > 0:
		loc = fmt.Sprintf("%s:%d: ", d.File, d.Line)
	case d.File != "":
		loc = d.File + ": "
	}
	s := fmt.Sprintf("%s[%s] %s", loc, d.Severity, d.Message)
	if d.Rule != "" {
		s += " (" + d.Rule + ")"
	}
	return s
}

// Result is the outcome of a task's check operation.
type Result struct {
	Status Status `json:"status"`
	// Reason explains a skipped status.
	Reason       string        `json:"reason,omitempty"`
	Diagnostics  []Diagnostic  `json:"diagnostics,omitempty"`
	Duration     time.Duration `json:"duration"`
	FilesChecked int           `json:"files_checked"`
}

// Passed returns a passed result for the given number of checked files.
func Passed(filesChecked int) Result {
	return Result{Status: StatusPassed, FilesChecked: filesChecked}
}

// Failed returns a failed result carrying the given diagnostics.
func Failed(filesChecked int, diags ...Diagnostic) Result {
	return Result{Status: StatusFailed, FilesChecked: filesChecked, Diagnostics: diags}
}

// Skipped returns a skipped result with a reason.
func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

// ErrorResult converts an error into a failed result with one error diagnostic.
func ErrorResult(err error) Result {
	return Failed(0, Diagnostic{Message: err.Error(), Severity: SeverityError})
}

// FromDiagnostics derives a status from diagnostics: any error makes the
// result failed, any warning makes it a warning, otherwise it passed.
func FromDiagnostics(filesChecked int, diags []Diagnostic) Result {
	status := StatusPassed
	for _, d := range diags {
		if d.Severity == SeverityError {
			status = StatusFailed
			break
		}
		if d.Severity == SeverityWarning {
			status = StatusWarning
		}
	}
	return Result{Status: status, FilesChecked: filesChecked, Diagnostics: diags}
}

// FixResult is the outcome of a task's fix operation.
type FixResult struct {
	ModifiedFiles []string `json:"modified_files,omitempty"`
	FixesApplied  int      `json:"fixes_applied"`
	Errors        []string `json:"errors,omitempty"`
}

// Success is true iff the fix reported no errors.
func (f FixResult) Success() bool {
	return len(f.Errors) == 0
}
