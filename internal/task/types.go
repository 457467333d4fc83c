package task

import "fmt"

// Mode selects which task operations a run invokes.
type Mode string

const (
	// ModeCheck invokes only the check operation.
	ModeCheck Mode = "check"
	// ModeFix invokes the fix operation, then the check operation.
	ModeFix Mode = "fix"
	// ModeFixOnly invokes only the fix operation.
	ModeFixOnly Mode = "fixOnly"
)

// ParseMode converts a configuration string into a Mode.
// The empty string maps to ModeFix.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFix, nil
	case ModeCheck, ModeFix, ModeFixOnly:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid task mode %q: must be one of check, fix, fixOnly", s)
}

// HookType names the hook invocation a run serves.
type HookType string

const (
	HookPreCommit HookType = "pre-commit"
	HookPrePush   HookType = "pre-push"
	HookCI        HookType = "ci"
)

// AllHooks returns the supported hook types in canonical order.
func AllHooks() []HookType {
	return []HookType{HookPreCommit, HookPrePush, HookCI}
}

// ParseHookType validates a hook name.
func ParseHookType(s string) (HookType, error) {
	for _, h := range AllHooks() {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown hook type %q: must be one of pre-commit, pre-push, ci", s)
}

// FileScope selects which files a run considers.
type FileScope string

const (
	// ScopeStaged is the set of files staged in the index.
	ScopeStaged FileScope = "staged"
	// ScopeChanged is the set of files changed since the base branch.
	ScopeChanged FileScope = "changed"
	// ScopeDiff is the set of tracked files modified in the index or working tree.
	ScopeDiff FileScope = "diff"
	// ScopeAll is every tracked file.
	ScopeAll FileScope = "all"
)

// ParseFileScope validates a file scope name.
func ParseFileScope(s string) (FileScope, error) {
	switch FileScope(s) {
	case ScopeStaged, ScopeChanged, ScopeDiff, ScopeAll:
		return FileScope(s), nil
	}
	return "", fmt.Errorf("invalid file scope %q: must be one of staged, changed, diff, all", s)
}
