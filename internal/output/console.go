package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/gatehook/internal/progress"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/ariel-frischer/gatehook/internal/workflow"
	"github.com/briandowns/spinner"
)

// maxDiagnostics caps the diagnostics printed per task.
const maxDiagnostics = 20

// ConsoleOptions configures a ConsoleReporter.
type ConsoleOptions struct {
	Caps progress.TerminalCapabilities
	// Verbose also prints diagnostics of passing tasks.
	Verbose bool
}

// ConsoleReporter prints human-readable progress. Tasks finishing in
// parallel are printed in completion order, one line each.
type ConsoleReporter struct {
	mu      sync.Mutex
	out     io.Writer
	opts    ConsoleOptions
	sym     progress.Symbols
	p       palette
	spin    *spinner.Spinner
	running map[string]bool
}

var _ workflow.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a reporter writing to out. A spinner is shown
// only when the terminal is interactive.
func NewConsoleReporter(out io.Writer, opts ConsoleOptions) *ConsoleReporter {
	r := &ConsoleReporter{
		out:     out,
		opts:    opts,
		sym:     progress.SelectSymbols(opts.Caps),
		p:       newPalette(opts.Caps.SupportsColor),
		running: make(map[string]bool),
	}
	if opts.Caps.IsTTY {
		r.spin = spinner.New(spinner.CharSets[r.sym.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return r
}

func (r *ConsoleReporter) RunStarted(info workflow.RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := string(info.Hook)
	if name == "" {
		name = workflow.FixStageName
	}
	detail := fmt.Sprintf("%s, fix mode %s", info.Scope, info.FixMode)
	if info.CI {
		detail += ", ci"
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n",
		r.p.cyan("gatehook "+name+":"), pluralize(info.Files, "file"), r.p.dim(detail))
}

func (r *ConsoleReporter) StageStarted(stage string, tasks int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pauseSpinner()
	fmt.Fprintf(r.out, "%s %s %s\n", r.p.cyan(r.sym.Stage), r.p.bold(stage), r.p.dim("("+pluralize(tasks, "task")+")"))
	r.resumeSpinner()
}

func (r *ConsoleReporter) TaskStarted(stage, taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running[taskID] = true
	r.resumeSpinner()
}

func (r *ConsoleReporter) TaskFinished(stage string, run workflow.TaskRun) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pauseSpinner()
	delete(r.running, run.TaskID)
	r.writeTask(run)
	r.resumeSpinner()
}

func (r *ConsoleReporter) StageFinished(result workflow.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.Success {
		return
	}
	r.pauseSpinner()
	note := ""
	if result.ContinueOnError {
		note = r.p.dim(" (continue_on_error)")
	}
	fmt.Fprintf(r.out, "  %s%s\n", r.p.red("stage "+result.Name+" failed"), note)
	r.resumeSpinner()
}

func (r *ConsoleReporter) RunFinished(result *workflow.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = make(map[string]bool)
	r.pauseSpinner()

	if n := len(result.Restaged); n > 0 {
		fmt.Fprintf(r.out, "%s %s\n", r.p.dim("restaged"), pluralize(n, "file"))
	}

	s := result.Summary
	counts := fmt.Sprintf("%d passed, %d failed, %d warning, %d skipped", s.Passed, s.Failed, s.Warning, s.Skipped)
	if s.FixesApplied > 0 {
		counts += fmt.Sprintf(", %d fixed in %s", s.FixesApplied, pluralize(s.ModifiedFiles, "file"))
	}
	verdict := r.p.green(r.sym.Passed + " passed")
	if !result.Success {
		verdict = r.p.red(r.sym.Failed + " failed")
	}
	fmt.Fprintf(r.out, "%s %s %s\n", verdict, counts, r.p.dim("("+FormatDuration(result.Duration)+")"))
}

func (r *ConsoleReporter) writeTask(run workflow.TaskRun) {
	res := run.Result
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s", statusMark(res.Status, r.sym, r.p), run.TaskID)

	switch res.Status {
	case task.StatusSkipped:
		fmt.Fprintf(&b, "  %s", r.p.dim("skipped: "+res.Reason))
	default:
		fmt.Fprintf(&b, "  %s", r.p.dim(FormatDuration(res.Duration)))
	}
	if run.Fix != nil && len(run.Fix.ModifiedFiles) > 0 {
		fmt.Fprintf(&b, " %s", r.p.yellow("fixed "+pluralize(len(run.Fix.ModifiedFiles), "file")))
	}
	if res.Status == task.StatusFailed && !run.Blocking {
		fmt.Fprintf(&b, " %s", r.p.dim("(non-blocking)"))
	}
	fmt.Fprintln(r.out, b.String())

	if res.Status == task.StatusPassed && !r.opts.Verbose {
		return
	}
	for i, d := range res.Diagnostics {
		if i == maxDiagnostics {
			fmt.Fprintf(r.out, "      %s\n", r.p.dim(fmt.Sprintf("... and %d more", len(res.Diagnostics)-i)))
			break
		}
		fmt.Fprintln(r.out, indentLines(r.diagnostic(d), "      "))
	}
}

func (r *ConsoleReporter) diagnostic(d task.Diagnostic) string {
	s := d.String()
	if r.opts.Caps.Width > 0 && !strings.Contains(s, "\n") {
		s = truncate(s, r.opts.Caps.Width-6)
	}
	switch d.Severity {
	case task.SeverityError:
		return r.p.red(s)
	case task.SeverityWarning:
		return r.p.yellow(s)
	}
	return s
}

// pauseSpinner stops the spinner so a line can be printed. Callers hold mu.
func (r *ConsoleReporter) pauseSpinner() {
	if r.spin != nil {
		r.spin.Stop()
	}
}

// resumeSpinner restarts the spinner while tasks are running. Callers hold mu.
func (r *ConsoleReporter) resumeSpinner() {
	if r.spin == nil || len(r.running) == 0 {
		return
	}
	ids := make([]string, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	r.spin.Lock()
	r.spin.Suffix = " " + truncate(strings.Join(ids, ", "), 60)
	r.spin.Unlock()
	r.spin.Start()
}
