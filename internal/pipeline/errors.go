package pipeline

import "errors"

// ErrConnect is wrapped by every error that prevented an authenticated
// session from being established, other than rejected credentials.
var ErrConnect = errors.New("could not connect to the portal")

// Exit codes returned by ExitCode.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConnection = 2
)

// ExitCode maps the error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConnect):
		return ExitConnection
	default:
		return ExitFailure
	}
}
