package task

import "fmt"

// FixSafety classifies how risky a task's automatic fix is to apply unattended.
type FixSafety string

const (
	SafetySafe     FixSafety = "safe"
	SafetyCautious FixSafety = "cautious"
	SafetyUnsafe   FixSafety = "unsafe"
)

// ParseFixSafety validates a fix safety name. The empty string maps to SafetySafe.
func ParseFixSafety(s string) (FixSafety, error) {
	switch FixSafety(s) {
	case "":
		return SafetySafe, nil
	case SafetySafe, SafetyCautious, SafetyUnsafe:
		return FixSafety(s), nil
	}
	return "", fmt.Errorf("invalid fix safety %q: must be one of safe, cautious, unsafe", s)
}

// FixMode is the run-wide policy deciding which fix safety levels may be applied.
type FixMode string

const (
	FixNone     FixMode = "none"
	FixSafe     FixMode = "safe"
	FixCautious FixMode = "cautious"
	FixAll      FixMode = "all"
)

// ParseFixMode validates a fix mode name.
func ParseFixMode(s string) (FixMode, error) {
	switch FixMode(s) {
	case FixNone, FixSafe, FixCautious, FixAll:
		return FixMode(s), nil
	}
	return "", fmt.Errorf("invalid fix mode %q: must be one of none, safe, cautious, all", s)
}

// permitted is the fix-safety lattice. Unknown modes permit nothing.
var permitted = map[FixMode][]FixSafety{
	FixNone:     nil,
	FixSafe:     {SafetySafe},
	FixCautious: {SafetySafe, SafetyCautious},
	FixAll:      {SafetySafe, SafetyCautious, SafetyUnsafe},
}

// Permits reports whether fixes classified as safety may run under mode.
func (m FixMode) Permits(safety FixSafety) bool {
	for _, s := range permitted[m] {
		if s == safety {
			return true
		}
	}
	return false
}
