// Package output renders run progress for humans and for logs.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariel-frischer/gatehook/internal/progress"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/fatih/color"
)

// palette holds the color functions used by the console reporter.
type palette struct {
	green, red, yellow, cyan, dim, bold func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		green:  mk(color.FgGreen, color.Bold),
		red:    mk(color.FgRed, color.Bold),
		yellow: mk(color.FgYellow),
		cyan:   mk(color.FgCyan, color.Bold),
		dim:    mk(color.Faint),
		bold:   mk(color.Bold),
	}
}

// statusMark returns the colored symbol for a result status.
func statusMark(s task.Status, sym progress.Symbols, p palette) string {
	switch s {
	case task.StatusPassed:
		return p.green(sym.Passed)
	case task.StatusFailed:
		return p.red(sym.Failed)
	case task.StatusWarning:
		return p.yellow(sym.Warning)
	default:
		return p.dim(sym.Skipped)
	}
}

// FormatDuration renders d rounded for display: "850ms", "1.2s", "2m3s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// pluralize returns "1 file" or "3 files".
func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// indentLines prefixes every line of s.
func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
