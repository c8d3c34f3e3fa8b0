package portal

import (
	"net/http"
	"strings"
)

// basicAuthTransport wraps an http.RoundTripper to add HTTP Basic
// authentication to every request sent to the portal host, including
// requests made while following redirects.
type basicAuthTransport struct {
	base     http.RoundTripper
	host     string
	username string
	password string
}

// RoundTrip implements http.RoundTripper.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.EqualFold(req.URL.Host, t.host) {
		return t.base.RoundTrip(req)
	}

	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.password)

	return t.base.RoundTrip(clone)
}

// CloseIdleConnections forwards to the wrapped transport so that
// http.Client.CloseIdleConnections reaches the connection pool.
func (t *basicAuthTransport) CloseIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
