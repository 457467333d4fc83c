package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
)

// exitError carries an exit code for outcomes that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// ExitCode returns the process exit code for an error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitConfigError
		case clierrors.Prerequisite:
			return ExitNotRepository
		}
	}
	return ExitRuntimeError
}

// reported reports whether err's message was already shown to the user.
func reported(err error) bool {
	var e *exitError
	return errors.As(err, &e)
}
