package tasks

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// base carries the descriptor and filesystem shared by native tasks.
type base struct {
	desc task.Descriptor
	fs   afero.Fs
}

func (b *base) Descriptor() task.Descriptor { return b.desc }

// targets returns the scope files the task applies to.
func (b *base) targets(ec *task.ExecutionContext) []string {
	if len(b.desc.Patterns) == 0 {
		return ec.Files
	}
	return ec.FilesMatching(b.desc.Patterns)
}

// textFile is a readable, non-binary file in scope.
type textFile struct {
	Path    string
	Content []byte
}

// readText loads the working-tree text files among paths for a fix.
// Deleted files and binary files are skipped.
func (b *base) readText(ec *task.ExecutionContext, paths []string) ([]textFile, error) {
	return b.load(ec, paths, false)
}

// checkText loads the text files among paths for a check. In the staged
// scope the content comes from the index, so the check sees what is being
// committed.
func (b *base) checkText(ec *task.ExecutionContext, paths []string) ([]textFile, error) {
	return b.load(ec, paths, true)
}

func (b *base) load(ec *task.ExecutionContext, paths []string, check bool) ([]textFile, error) {
	files := make([]textFile, 0, len(paths))
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if check && ec.ReadsIndex(p) {
			var staged string
			staged, err = ec.VCS.StagedContent(p)
			if err != nil {
				return nil, fmt.Errorf("reading staged %s: %w", p, err)
			}
			data = []byte(staged)
		} else {
			data, err = afero.ReadFile(b.fs, ec.AbsPath(p))
		}
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if isBinary(data) {
			continue
		}
		files = append(files, textFile{Path: p, Content: data})
	}
	return files, nil
}

// rewrite replaces the file content, keeping its permissions.
func (b *base) rewrite(ec *task.ExecutionContext, path string, content []byte) error {
	abs := ec.AbsPath(path)
	mode := fs.FileMode(0o644)
	if info, err := b.fs.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	}
	return afero.WriteFile(b.fs, abs, content, mode)
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
