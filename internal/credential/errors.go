package credential

import "errors"

var (
	// ErrNoCredentials is returned by a provider that has nothing to offer
	// for the requested attempt. Chain moves on to the next provider.
	ErrNoCredentials = errors.New("no credentials available")

	// ErrAborted is returned when the user cancels the prompt.
	ErrAborted = errors.New("credential prompt aborted")
)
