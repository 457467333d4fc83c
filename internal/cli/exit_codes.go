package cli

// Exit codes for the gatehook CLI. Hooks and CI jobs branch on these.
const (
	// ExitSuccess indicates every gate passed.
	ExitSuccess = 0

	// ExitGateFailed indicates at least one blocking task failed.
	ExitGateFailed = 1

	// ExitRuntimeError indicates the run could not complete.
	ExitRuntimeError = 2

	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3

	// ExitConfigError indicates an invalid configuration or pipeline.
	ExitConfigError = 4

	// ExitNotRepository indicates the working directory is not a git work tree.
	ExitNotRepository = 5
)
