// Package progress detects what the attached terminal can render.
package progress

import (
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes the output terminal.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// Symbols are the status marks printed next to task results.
type Symbols struct {
	Passed  string
	Failed  string
	Warning string
	Skipped string
	Stage   string
	// SpinnerSet indexes spinner.CharSets.
	SpinnerSet int
}

// DetectTerminalCapabilities inspects stdout.
// Checks: stdout isatty, NO_COLOR env, GATEHOOK_ASCII env, terminal width.
func DetectTerminalCapabilities() TerminalCapabilities {
	return Detect(os.Stdout, os.Getenv)
}

// Detect inspects f, reading environment variables through getenv.
func Detect(f *os.File, getenv func(string) string) TerminalCapabilities {
	isTTY := f != nil && term.IsTerminal(int(f.Fd()))

	noColor := getenv("NO_COLOR") != ""
	forceASCII := getenv("GATEHOOK_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns the symbol set the terminal can display.
// Unicode: ✓/✗ with braille spinner (set 14). ASCII: [OK]/[FAIL] with |/-\ spinner (set 9).
func SelectSymbols(caps TerminalCapabilities) Symbols {
	if caps.SupportsUnicode {
		return Symbols{
			Passed:     "✓",
			Failed:     "✗",
			Warning:    "!",
			Skipped:    "○",
			Stage:      "▸",
			SpinnerSet: 14,
		}
	}

	return Symbols{
		Passed:     "[OK]",
		Failed:     "[FAIL]",
		Warning:    "[WARN]",
		Skipped:    "[SKIP]",
		Stage:      "==>",
		SpinnerSet: 9,
	}
}
