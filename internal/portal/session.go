package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/wisdl/internal/model"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
)

// Portal pages and defaults.
const (
	// DefaultBaseURL is the scheme and host of the FIT information system.
	DefaultBaseURL = "https://wis.fit.vutbr.cz"

	// StudiesPage lists the user's studies. It is used to validate credentials.
	StudiesPage = "study-s.php.cs"

	// StudyCoursesPage lists the courses of one study, selected by StudyParam.
	StudyCoursesPage = "study-a.php.cs"

	// StudyParam is the query parameter carrying the study id.
	StudyParam = "cist"

	// DefaultChunkSize is the buffer size used when streaming downloads.
	DefaultChunkSize = 128 * 1024

	// MinChunkSize is the smallest accepted chunk size.
	MinChunkSize = 64 * 1024

	// DefaultTimeout bounds each page fetch and the wait for response headers.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxPageSize limits how much of a page body is read.
	DefaultMaxPageSize = 5 * 1024 * 1024

	// DefaultUserAgent identifies wisdl in portal access logs.
	DefaultUserAgent = "wisdl (+https://github.com/nao1215/wisdl)"

	dialTimeout         = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
	idleConnTimeout     = 90 * time.Second
)

// Session is the authenticated channel to the portal.
// It is not safe for concurrent use; wisdl drives it from a single goroutine.
type Session struct {
	// username is kept for error reporting. The password lives only in the transport.
	username string

	// origin is the portal scheme and host, e.g. "https://wis.fit.vutbr.cz".
	origin string

	// client sends every request. Its transport adds Basic authentication.
	client *http.Client

	// fs is where downloaded files are written.
	fs afero.Fs

	timeout     time.Duration
	chunkSize   int
	maxPageSize int64
	userAgent   string
	logger      *slog.Logger

	// baseClient is an injected client, used instead of the default transport.
	baseClient *http.Client

	closeOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL sets the portal scheme and host. Used to point at a test server.
func WithBaseURL(baseURL string) Option {
	return func(s *Session) {
		s.origin = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout sets the per-page deadline. 0 disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithChunkSize sets the download buffer size. Values below MinChunkSize
// are raised to MinChunkSize.
func WithChunkSize(size int) Option {
	return func(s *Session) {
		s.chunkSize = max(size, MinChunkSize)
	}
}

// WithMaxPageSize sets the maximum page body size in bytes.
func WithMaxPageSize(size int64) Option {
	return func(s *Session) {
		s.maxPageSize = size
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithFS sets the filesystem downloads are written to.
func WithFS(fs afero.Fs) Option {
	return func(s *Session) {
		s.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHTTPClient replaces the default client. Its transport is still
// wrapped to add Basic authentication.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.baseClient = client
	}
}

// NewSession creates a Session that authenticates every request with creds.
// No request is made until Probe or FetchPage is called.
func NewSession(creds model.Credentials, opts ...Option) (*Session, error) {
	s := &Session{
		username:    creds.Username,
		origin:      DefaultBaseURL,
		fs:          afero.NewOsFs(),
		timeout:     DefaultTimeout,
		chunkSize:   DefaultChunkSize,
		maxPageSize: DefaultMaxPageSize,
		userAgent:   DefaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	base, err := url.Parse(s.origin)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, s.origin)
	}

	s.client = s.newHTTPClient(base.Host, creds)
	return s, nil
}

// newHTTPClient builds the run's client. Credentials are only sent to host.
func (s *Session) newHTTPClient(host string, creds model.Credentials) *http.Client {
	var base http.RoundTripper
	client := &http.Client{}

	if s.baseClient != nil {
		*client = *s.baseClient
		base = s.baseClient.Transport
	}
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   tlsHandshakeTimeout,
			ResponseHeaderTimeout: s.timeout,
			MaxIdleConns:          4,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       idleConnTimeout,
		}
	}

	client.Transport = &basicAuthTransport{
		base:     base,
		host:     host,
		username: creds.Username,
		password: creds.Password,
	}
	return client
}

// Username returns the login the session authenticates as.
func (s *Session) Username() string {
	return s.username
}

// ResolveURL turns a raw portal link into an absolute URL.
func (s *Session) ResolveURL(raw string) string {
	return ResolveURL(s.origin, raw)
}

// Probe fetches the studies page to check the credentials.
// It returns *AuthError on 401 and *TransportError on any other failure.
func (s *Session) Probe(ctx context.Context) error {
	_, err := s.FetchPage(ctx, StudiesPage, nil)
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode == http.StatusUnauthorized {
		return &AuthError{Username: s.username, URL: transportErr.URL}
	}
	return err
}

// FetchStudy fetches the course list of one study.
func (s *Session) FetchStudy(ctx context.Context, studyID int) (string, error) {
	return s.FetchPage(ctx, StudyCoursesPage, url.Values{StudyParam: {strconv.Itoa(studyID)}})
}

// FetchPage fetches a portal page and returns its text decoded from ISO-8859-2.
// params are merged into the query of the resolved link.
func (s *Session) FetchPage(ctx context.Context, link string, params url.Values) (string, error) {
	target, err := s.buildURL(link, params)
	if err != nil {
		return "", &TransportError{URL: link, Err: err}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.get(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxPageSize+1))
	if err != nil {
		return "", &TransportError{URL: target, Err: err}
	}
	if int64(len(body)) > s.maxPageSize {
		return "", &TransportError{URL: target, Err: ErrPageTooLarge}
	}

	decoded, err := charmap.ISO8859_2.NewDecoder().Bytes(body)
	if err != nil {
		return "", &TransportError{URL: target, Err: fmt.Errorf("decode ISO-8859-2: %w", err)}
	}

	s.logger.Debug("fetched page", "url", target, "bytes", len(body))
	return string(decoded), nil
}

// DownloadFile streams the file behind link into destPath, creating or
// truncating it. It returns the number of bytes written.
func (s *Session) DownloadFile(ctx context.Context, link, destPath string) (int64, error) {
	target := s.ResolveURL(link)

	resp, err := s.get(ctx, target)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	s.logger.Debug("downloading", "url", target, "path", destPath)

	f, err := s.fs.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	n, copyErr := s.copyChunks(f, resp.Body)
	closeErr := f.Close()

	if copyErr != nil {
		var readErr *chunkReadError
		if errors.As(copyErr, &readErr) {
			return n, &TransportError{URL: target, Err: readErr.err}
		}
		return n, fmt.Errorf("failed to write %s: %w", destPath, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("failed to close %s: %w", destPath, closeErr)
	}

	s.logger.Info("successfully downloaded", "path", destPath, "bytes", n)
	return n, nil
}

// chunkReadError marks a failure reading the response body, as opposed to
// a failure writing to disk.
type chunkReadError struct {
	err error
}

func (e *chunkReadError) Error() string { return e.err.Error() }

// copyChunks copies src to dst through a buffer of s.chunkSize bytes.
func (s *Session) copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, s.chunkSize)
	var written int64
	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, &chunkReadError{err: readErr}
		}
	}
}

// Close releases the connection pool. Calling it more than once is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.client.CloseIdleConnections()
		s.logger.Debug("portal session closed")
	})
}

// buildURL resolves link and merges params into its query.
func (s *Session) buildURL(link string, params url.Values) (string, error) {
	target := s.ResolveURL(link)
	if len(params) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	query := u.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// get issues a GET and fails with *TransportError on anything but 2xx.
// On success the caller owns resp.Body.
func (s *Session) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // draining for connection reuse
		resp.Body.Close()
		return nil, &TransportError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
		}
	}

	return resp, nil
}
