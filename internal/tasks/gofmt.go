package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/format"
	"go/scanner"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

// Gofmt checks and applies canonical Go formatting.
type Gofmt struct{ base }

// NewGofmt creates the gofmt task.
func NewGofmt(fsys afero.Fs) *Gofmt {
	return &Gofmt{base{
		fs: fsys,
		desc: task.Descriptor{
			ID:          "gofmt",
			Name:        "Go formatting",
			SupportsFix: true,
			FixSafety:   task.SafetySafe,
			Blocking:    true,
			Patterns:    []string{"*.go"},
		},
	}}
}

// Run reports unformatted files and files that fail to parse.
func (t *Gofmt) Run(_ context.Context, ec *task.ExecutionContext) (task.Result, error) {
	files, err := t.checkText(ec, t.targets(ec))
	if err != nil {
		return task.Result{}, err
	}
	var diags []task.Diagnostic
	for _, f := range files {
		formatted, err := format.Source(f.Content)
		if err != nil {
			diags = append(diags, parseDiagnostics(f.Path, err)...)
			continue
		}
		if !bytes.Equal(formatted, f.Content) {
			diags = append(diags, task.Diagnostic{
				File:     f.Path,
				Message:  "file is not gofmt-formatted",
				Severity: task.SeverityError,
				Rule:     t.desc.ID,
				Fixable:  true,
			})
		}
	}
	return task.FromDiagnostics(len(files), diags), nil
}

// Fix formats files in place. Files that fail to parse are left untouched
// and reported as fix errors.
func (t *Gofmt) Fix(_ context.Context, ec *task.ExecutionContext) (task.FixResult, error) {
	files, err := t.readText(ec, t.targets(ec))
	if err != nil {
		return task.FixResult{}, err
	}
	var res task.FixResult
	for _, f := range files {
		formatted, err := format.Source(f.Content)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		if bytes.Equal(formatted, f.Content) {
			continue
		}
		if err := t.rewrite(ec, f.Path, formatted); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		res.ModifiedFiles = append(res.ModifiedFiles, f.Path)
		res.FixesApplied++
	}
	return res, nil
}

func parseDiagnostics(path string, err error) []task.Diagnostic {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		diags := make([]task.Diagnostic, 0, len(list))
		for _, e := range list {
			diags = append(diags, task.Diagnostic{
				File:     path,
				Line:     e.Pos.Line,
				Column:   e.Pos.Column,
				Message:  e.Msg,
				Severity: task.SeverityError,
				Rule:     "syntax",
			})
		}
		return diags
	}
	return []task.Diagnostic{{File: path, Message: err.Error(), Severity: task.SeverityError, Rule: "syntax"}}
}
