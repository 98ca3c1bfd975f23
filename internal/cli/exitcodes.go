package cli

import (
	"errors"
	"io/fs"
)

// Exit codes for jsoncomma.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitNeedsRepair indicates --check found files with misplaced commas.
	ExitNeedsRepair = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Errors that select an exit code. Commands wrap them around the cause.
var (
	// ErrNeedsRepair is returned by fix --check when a file needs repair.
	// main does not log it.
	ErrNeedsRepair = errors.New("files need comma repair")

	// ErrUsage marks invalid flags or arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig marks configuration loading or validation failures.
	ErrConfig = errors.New("configuration error")

	// ErrIO marks failures reading or writing files.
	ErrIO = errors.New("i/o error")
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNeedsRepair):
		return ExitNeedsRepair
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrIO), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
