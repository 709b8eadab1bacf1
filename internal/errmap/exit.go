package errmap

import (
	"errors"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Process exit codes for the dictsmoke CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUserAborted = 2
	ExitAuthFailure = 3
)

// ToExitCode converts an error returned by a command to an exit code.
// A user abort is checked first since it also counts as an auth error.
func ToExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrUserAborted):
		return ExitUserAborted
	case domain.IsAuthError(err):
		return ExitAuthFailure
	default:
		return ExitFailure
	}
}
