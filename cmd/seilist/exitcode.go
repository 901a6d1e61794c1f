package main

import (
	"context"
	"errors"

	"github.com/automatizamg/seilist/internal/model"
)

// Process exit codes.
const (
	// ExitOK means the listing was exported.
	ExitOK = 0

	// ExitDomainError means a configuration, authentication or listing
	// error stopped the run.
	ExitDomainError = 10

	// ExitInterrupted means the run was interrupted by a signal.
	ExitInterrupted = 130

	// ExitUnexpected covers every other failure.
	ExitUnexpected = 99
)

// exitCode maps the outcome of a command to the process exit code.
// An interrupted context wins over whatever error the interruption caused.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return ExitInterrupted
	case model.IsDomainError(err):
		return ExitDomainError
	default:
		return ExitUnexpected
	}
}

// loggedError marks an error the command already reported through the
// logger, so Execute does not print it a second time.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string {
	return e.err.Error()
}

func (e *loggedError) Unwrap() error {
	return e.err
}
