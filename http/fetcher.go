// Package http provides HTTP-based implementations of skywatch.DocumentSource
// and skywatch.Fetcher for discovering and downloading sighting-report PDFs.
package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/skywatch"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// pdfMagic is the required prefix of a well-formed PDF file.
var pdfMagic = []byte("%PDF-")

// Ensure Fetcher implements skywatch.Fetcher at compile time.
var _ skywatch.Fetcher = (*Fetcher)(nil)

// Fetcher downloads PDF documents over HTTP and classifies failures into
// transient (retryable) and permanent errors.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient replaces the underlying HTTP client. Used in tests.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// Fetch retrieves the raw PDF bytes for the given URL.
//
// Timeouts, rate limiting (429) and server errors (5xx) come back as
// transient errors; 4xx responses and non-PDF payloads are permanent.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EINVALID, "invalid document URL %q: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EUNAVAILABLE, "reading %s: %v", url, err)
	}

	if !bytes.HasPrefix(body, pdfMagic) {
		return nil, skywatch.Errorf(skywatch.EINVALID, "%s is not a PDF document", url)
	}

	return body, nil
}

// classifyTransportError maps network-level failures to error codes.
// Context cancellation is surfaced as ECANCELED so workers can tell a
// run-level abort apart from a flaky connection.
func classifyTransportError(url string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return skywatch.Errorf(skywatch.ECANCELED, "fetch of %s canceled", url)
	case errors.Is(err, context.DeadlineExceeded):
		return skywatch.Errorf(skywatch.ETIMEOUT, "fetch of %s timed out", url)
	}
	return skywatch.Errorf(skywatch.EUNAVAILABLE, "fetching %s: %v", url, err)
}

// classifyStatus maps HTTP status codes to error codes.
func classifyStatus(url string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return skywatch.Errorf(skywatch.EUNAVAILABLE, "HTTP %d for %s", status, url)
	case status >= 500:
		return skywatch.Errorf(skywatch.EUNAVAILABLE, "HTTP %d for %s", status, url)
	case status == http.StatusNotFound || status == http.StatusGone:
		return skywatch.Errorf(skywatch.ENOTFOUND, "HTTP %d for %s", status, url)
	default:
		return skywatch.Errorf(skywatch.EINVALID, "HTTP %d for %s", status, url)
	}
}
