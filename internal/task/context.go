package task

import (
	"maps"
	"path/filepath"
	"strconv"
)

// StagedFile is a path in the index with its one-letter git status.
type StagedFile struct {
	Path   string
	Status string
}

// VCS is the version-control collaborator consumed by the core.
// Implementations must be safe for concurrent use.
type VCS interface {
	IsRepository() bool
	StagedFiles() ([]StagedFile, error)
	StagedContent(path string) (string, error)
	ChangedFilesSince(baseRef string) ([]string, error)
	WorkingTreeChanges() ([]string, error)
	TrackedFiles() ([]string, error)
	// Restage re-adds paths to the index in a single call.
	Restage(paths []string) error
}

// ExecutionContext is the per-run state handed to every task.
// It is built once per run; per-task variations are shallow copies.
type ExecutionContext struct {
	Root  string
	Scope FileScope
	// Files is the file list of the active scope, relative to Root.
	Files        []string
	StagedFiles  []StagedFile
	ChangedFiles []string
	Hook         HookType
	FixMode      FixMode
	CI           bool
	BaseRef      string
	VCS          VCS
	// Options is the opaque per-task option bag. The core never interprets it.
	Options map[string]any
	// Fixed is shared by every task of the run.
	Fixed *FixedFiles
}

// WithOptions returns a copy of ec carrying opts.
func (ec *ExecutionContext) WithOptions(opts map[string]any) *ExecutionContext {
	cp := *ec
	cp.Options = maps.Clone(opts)
	return &cp
}

// WithFixMode returns a copy of ec with a different fix mode.
func (ec *ExecutionContext) WithFixMode(mode FixMode) *ExecutionContext {
	cp := *ec
	cp.FixMode = mode
	return &cp
}

// FilesMatching returns the scope files matching any pattern.
// With no patterns every scope file matches.
func (ec *ExecutionContext) FilesMatching(patterns []string) []string {
	return MatchFiles(patterns, ec.Files)
}

// ReadsIndex reports whether a check of path must inspect the staged blob
// instead of the working tree. That holds in the staged scope unless a fix in
// this run rewrote the file, since fixed files are restaged afterwards.
func (ec *ExecutionContext) ReadsIndex(path string) bool {
	return ec.Scope == ScopeStaged && ec.VCS != nil && !ec.Fixed.Contains(path)
}

// AbsPath resolves a scope-relative path against the project root.
func (ec *ExecutionContext) AbsPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(ec.Root, rel)
}

// OptionString returns a string option or def when absent.
func (ec *ExecutionContext) OptionString(key, def string) string {
	if v, ok := ec.Options[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// OptionInt returns an integer option or def when absent or malformed.
// Numbers decoded from YAML or JSON arrive as int, int64, float64 or string.
func (ec *ExecutionContext) OptionInt(key string, def int) int {
	switch v := ec.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// OptionBool returns a boolean option or def when absent.
func (ec *ExecutionContext) OptionBool(key string, def bool) bool {
	switch v := ec.Options[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
