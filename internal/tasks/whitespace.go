package tasks

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

// TrailingWhitespace reports and strips spaces and tabs at line ends.
type TrailingWhitespace struct{ base }

// NewTrailingWhitespace creates the trailing-whitespace task.
func NewTrailingWhitespace(fsys afero.Fs) *TrailingWhitespace {
	return &TrailingWhitespace{base{
		fs: fsys,
		desc: task.Descriptor{
			ID:          "trailing-whitespace",
			Name:        "Trailing whitespace",
			SupportsFix: true,
			FixSafety:   task.SafetySafe,
			Blocking:    true,
		},
	}}
}

// Run reports every line with trailing whitespace.
func (t *TrailingWhitespace) Run(_ context.Context, ec *task.ExecutionContext) (task.Result, error) {
	files, err := t.checkText(ec, t.targets(ec))
	if err != nil {
		return task.Result{}, err
	}
	var diags []task.Diagnostic
	for _, f := range files {
		for i, line := range bytes.Split(f.Content, []byte("\n")) {
			body := bytes.TrimSuffix(line, []byte("\r"))
			trimmed := bytes.TrimRight(body, " \t")
			if len(trimmed) == len(body) {
				continue
			}
			diags = append(diags, task.Diagnostic{
				File:     f.Path,
				Line:     i + 1,
				Column:   len(trimmed) + 1,
				Message:  "trailing whitespace",
				Severity: task.SeverityError,
				Rule:     t.desc.ID,
				Fixable:  true,
			})
		}
	}
	return task.FromDiagnostics(len(files), diags), nil
}

// Fix strips trailing whitespace in place.
func (t *TrailingWhitespace) Fix(_ context.Context, ec *task.ExecutionContext) (task.FixResult, error) {
	files, err := t.readText(ec, t.targets(ec))
	if err != nil {
		return task.FixResult{}, err
	}
	var res task.FixResult
	for _, f := range files {
		fixed, n := stripTrailing(f.Content)
		if n == 0 {
			continue
		}
		if err := t.rewrite(ec, f.Path, fixed); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		res.ModifiedFiles = append(res.ModifiedFiles, f.Path)
		res.FixesApplied += n
	}
	return res, nil
}

// stripTrailing returns content without trailing blanks and the number of
// lines changed. CRLF endings are preserved.
func stripTrailing(content []byte) ([]byte, int) {
	lines := bytes.Split(content, []byte("\n"))
	changed := 0
	for i, line := range lines {
		cr := bytes.HasSuffix(line, []byte("\r"))
		body := bytes.TrimSuffix(line, []byte("\r"))
		trimmed := bytes.TrimRight(body, " \t")
		if len(trimmed) == len(body) {
			continue
		}
		changed++
		if cr {
			trimmed = append(trimmed[:len(trimmed):len(trimmed)], '\r')
		}
		lines[i] = trimmed
	}
	return bytes.Join(lines, []byte("\n")), changed
}

// EndOfFile requires non-empty files to end with exactly one newline.
type EndOfFile struct{ base }

// NewEndOfFile creates the end-of-file task.
func NewEndOfFile(fsys afero.Fs) *EndOfFile {
	return &EndOfFile{base{
		fs: fsys,
		desc: task.Descriptor{
			ID:          "end-of-file",
			Name:        "End of file newline",
			SupportsFix: true,
			FixSafety:   task.SafetySafe,
			Blocking:    true,
		},
	}}
}

// Run reports files missing a final newline or ending in blank lines.
func (t *EndOfFile) Run(_ context.Context, ec *task.ExecutionContext) (task.Result, error) {
	files, err := t.checkText(ec, t.targets(ec))
	if err != nil {
		return task.Result{}, err
	}
	var diags []task.Diagnostic
	for _, f := range files {
		fixed := normalizeEOF(f.Content)
		if bytes.Equal(fixed, f.Content) {
			continue
		}
		msg := "missing newline at end of file"
		if bytes.HasSuffix(f.Content, []byte("\n")) {
			msg = "extra blank lines at end of file"
		}
		diags = append(diags, task.Diagnostic{
			File:     f.Path,
			Message:  msg,
			Severity: task.SeverityError,
			Rule:     t.desc.ID,
			Fixable:  true,
		})
	}
	return task.FromDiagnostics(len(files), diags), nil
}

// Fix rewrites file endings in place.
func (t *EndOfFile) Fix(_ context.Context, ec *task.ExecutionContext) (task.FixResult, error) {
	files, err := t.readText(ec, t.targets(ec))
	if err != nil {
		return task.FixResult{}, err
	}
	var res task.FixResult
	for _, f := range files {
		fixed := normalizeEOF(f.Content)
		if bytes.Equal(fixed, f.Content) {
			continue
		}
		if err := t.rewrite(ec, f.Path, fixed); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		res.ModifiedFiles = append(res.ModifiedFiles, f.Path)
		res.FixesApplied++
	}
	return res, nil
}

// normalizeEOF trims trailing line breaks and appends a single one, keeping
// CRLF when the file used it. Files holding only line breaks become empty.
func normalizeEOF(content []byte) []byte {
	if len(content) == 0 {
		return content
	}
	body := bytes.TrimRight(content, "\r\n")
	if len(body) == 0 {
		return []byte{}
	}
	eol := "\n"
	if bytes.HasPrefix(content[len(body):], []byte("\r\n")) {
		eol = "\r\n"
	}
	out := make([]byte, 0, len(body)+len(eol))
	out = append(out, body...)
	return append(out, eol...)
}
