package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/google/shlex"
	"github.com/spf13/afero"
)

// maxOutputLines bounds the command output kept in a diagnostic.
const maxOutputLines = 40

// Command is one external process invocation.
type Command struct {
	Args []string
	Dir  string
	Env  []string
}

// CommandResult is the outcome of a process that ran to completion.
type CommandResult struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// CommandRunner runs external commands. A non-zero exit is reported through
// ExitCode; the error return is reserved for processes that could not run.
type CommandRunner interface {
	RunCommand(ctx context.Context, cmd Command) (CommandResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout kills the process after the given duration. Zero disables it.
	Timeout time.Duration
}

// RunCommand starts the process and waits for it, killing it when ctx ends.
func (r ExecRunner) RunCommand(ctx context.Context, c Command) (CommandResult, error) {
	if len(c.Args) == 0 {
		return CommandResult{}, errors.New("empty command")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.Command(c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return CommandResult{}, fmt.Errorf("starting %s: %w", c.Args[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return CommandResult{}, fmt.Errorf("running %s: %w", c.Args[0], ctx.Err())
	case err = <-done:
	}

	result := CommandResult{Output: out.String(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return CommandResult{}, fmt.Errorf("running %s: %w", c.Args[0], err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

// ShellTask runs a user-defined command as a task.
type ShellTask struct {
	base
	command    string
	fixCommand string
	passFiles  bool
	shell      bool
	runner     CommandRunner
}

// NewShellTask builds a task from a custom_tasks entry. Files are read
// through fsys to detect what a fix command modified.
func NewShellTask(ct config.CustomTask, fsys afero.Fs, runner CommandRunner) (*ShellTask, error) {
	if strings.TrimSpace(ct.Command) == "" {
		return nil, fmt.Errorf("custom task %q: command is required", ct.ID)
	}
	hooks := make([]task.HookType, 0, len(ct.Hooks))
	for _, h := range ct.Hooks {
		hook, err := task.ParseHookType(h)
		if err != nil {
			return nil, fmt.Errorf("custom task %q: %w", ct.ID, err)
		}
		hooks = append(hooks, hook)
	}
	blocking := true
	if ct.Blocking != nil {
		blocking = *ct.Blocking
	}

	t := &ShellTask{
		base: base{
			fs: fsys,
			desc: task.Descriptor{
				ID:          ct.ID,
				Name:        ct.Name,
				Hooks:       hooks,
				SupportsFix: ct.FixCommand != "",
				FixSafety:   ct.FixSafety,
				Blocking:    blocking,
				Patterns:    ct.Patterns,
			},
		},
		command:    ct.Command,
		fixCommand: ct.FixCommand,
		passFiles:  ct.PassFiles,
		shell:      ct.Shell,
		runner:     runner,
	}

	// Surface quoting mistakes at startup rather than on first run.
	for _, c := range []string{t.command, t.fixCommand} {
		if c == "" {
			continue
		}
		if _, err := t.argv(c, nil); err != nil {
			return nil, fmt.Errorf("custom task %q: %w", ct.ID, err)
		}
	}
	return t, nil
}

// Run executes the check command.
func (t *ShellTask) Run(ctx context.Context, ec *task.ExecutionContext) (task.Result, error) {
	files := t.targets(ec)
	if t.passFiles && len(files) == 0 {
		return task.Skipped("no matching files"), nil
	}
	res, err := t.exec(ctx, ec, t.command, files)
	if err != nil {
		return task.Result{}, err
	}
	if res.ExitCode == 0 {
		return task.Passed(len(files)), nil
	}
	return task.Failed(len(files), task.Diagnostic{
		Message:  exitMessage(res),
		Severity: task.SeverityError,
		Rule:     t.desc.ID,
	}), nil
}

// Fix executes the fix command and reports the files whose content changed.
func (t *ShellTask) Fix(ctx context.Context, ec *task.ExecutionContext) (task.FixResult, error) {
	if t.fixCommand == "" {
		return task.FixResult{}, nil
	}
	files := t.targets(ec)
	if t.passFiles && len(files) == 0 {
		return task.FixResult{}, nil
	}

	before := t.snapshot(ec, files)
	res, err := t.exec(ctx, ec, t.fixCommand, files)
	if err != nil {
		return task.FixResult{}, err
	}

	var fr task.FixResult
	after := t.snapshot(ec, files)
	for _, p := range files {
		prev, hadPrev := before[p]
		cur, hasCur := after[p]
		if hadPrev != hasCur || !bytes.Equal(prev, cur) {
			fr.ModifiedFiles = append(fr.ModifiedFiles, p)
		}
	}
	fr.FixesApplied = len(fr.ModifiedFiles)
	if res.ExitCode != 0 {
		fr.Errors = append(fr.Errors, exitMessage(res))
	}
	return fr, nil
}

func (t *ShellTask) exec(ctx context.Context, ec *task.ExecutionContext, command string, files []string) (CommandResult, error) {
	var passed []string
	if t.passFiles {
		passed = files
	}
	args, err := t.argv(command, passed)
	if err != nil {
		return CommandResult{}, err
	}
	return t.runner.RunCommand(ctx, Command{
		Args: args,
		Dir:  ec.Root,
		Env: []string{
			"GATEHOOK_RUN_HOOK=" + string(ec.Hook),
			"GATEHOOK_RUN_FIX_MODE=" + string(ec.FixMode),
		},
	})
}

// argv builds the process arguments, appending files as trailing arguments.
func (t *ShellTask) argv(command string, files []string) ([]string, error) {
	if t.shell {
		script := command
		for _, f := range files {
			script += " " + shellQuote(f)
		}
		return []string{"sh", "-c", script}, nil
	}
	parts, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("command %q produces no arguments", command)
	}
	return append(parts, files...), nil
}

// snapshot reads the current content of files. Missing files are absent
// from the map.
func (t *ShellTask) snapshot(ec *task.ExecutionContext, files []string) map[string][]byte {
	snap := make(map[string][]byte, len(files))
	for _, p := range files {
		data, err := afero.ReadFile(t.fs, ec.AbsPath(p))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				snap[p] = nil
			}
			continue
		}
		snap[p] = data
	}
	return snap
}

// shellQuote wraps s in single quotes for sh, escaping embedded quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func exitMessage(res CommandResult) string {
	msg := fmt.Sprintf("exit status %d", res.ExitCode)
	out := strings.TrimSpace(res.Output)
	if out == "" {
		return msg
	}
	lines := strings.Split(out, "\n")
	if len(lines) > maxOutputLines {
		lines = append([]string{fmt.Sprintf("... %d lines omitted", len(lines)-maxOutputLines)}, lines[len(lines)-maxOutputLines:]...)
	}
	return msg + "\n" + strings.Join(lines, "\n")
}
