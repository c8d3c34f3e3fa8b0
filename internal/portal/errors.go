package portal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is wrapped by AuthError. It means the portal answered
	// 401 and new credentials should be requested.
	ErrUnauthorized = errors.New("portal rejected the credentials")

	// ErrUnexpectedStatus is wrapped by TransportError when the portal
	// answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrPageTooLarge is wrapped by TransportError when a page exceeds the
	// configured maximum page size.
	ErrPageTooLarge = errors.New("page exceeds maximum size")

	// ErrInvalidBaseURL is returned by NewSession when the base URL is not
	// an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid portal base URL: expected scheme://host")
)

// AuthError is returned by Probe when the portal rejects the credentials.
// It is the only recoverable error of the package.
type AuthError struct {
	// Username is the login that was rejected.
	Username string

	// URL is the page that answered 401.
	URL string
}

// Error implements error.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %q at %s", e.Username, e.URL)
}

// Unwrap returns ErrUnauthorized.
func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// TransportError is any failed exchange with the portal: a network error,
// a non-2xx status, an oversized page or a body that cannot be decoded.
type TransportError struct {
	// URL is the absolute URL of the failed request.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is, or wraps, an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
