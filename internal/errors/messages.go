package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the gatehook CLI.

// NotRepository is returned when gatehook runs outside a git work tree.
func NotRepository(dir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s is not inside a git repository", dir),
		"Run gatehook from within a git work tree",
		"Or initialize one with: git init",
	)
}

// UnknownHook reports a hook name that is not supported.
func UnknownHook(name string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown hook %q", name),
		"gatehook run <hook>",
		"Valid hooks: "+strings.Join(valid, ", "),
	)
}

// InvalidConfig wraps a configuration load or validation failure.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration, "invalid configuration",
		"Check the file with: gatehook validate",
		"Regenerate a starting point with: gatehook init --force",
	)
}

// InvalidPipeline reports a cycle or missing dependency in a hook pipeline.
func InvalidPipeline(hook string, err error) *CLIError {
	return WrapWithMessage(err, Configuration, fmt.Sprintf("invalid %s pipeline", hook),
		"Remove the dependency cycle or add the missing stage or task",
		"Inspect the execution order with: gatehook validate "+hook,
	)
}

// ConfigExists reports that init would overwrite an existing file.
func ConfigExists(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file already exists: %s", path),
		"Use --force to overwrite it",
	)
}

// InvalidFixMode reports an unsupported --mode value.
func InvalidFixMode(mode string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid fix mode %q", mode),
		"gatehook fix --mode <mode>",
		"Valid modes: none, safe, cautious, all",
	)
}
