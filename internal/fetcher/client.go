// Package fetcher issues the registry download requests: a descriptive
// User-Agent per the registry's crawling policy, optional verbose request
// logging, and the fixed inter-request throttle.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type Client struct {
	http      *http.Client
	userAgent string
}

type options struct {
	verbose bool
	// writer controls where verbose HTTP logs go (typically stderr) so the
	// progress output stays readable and tests can capture logs.
	writer    io.Writer
	transport http.RoundTripper
}

type Option func(*options)

// WithVerbose enables one log line per request and response.
func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// WithTransport overrides the underlying transport (used in tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// uaRoundTripper stamps the client identifier on every request.
type uaRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (t *uaRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *log.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("registry request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.logger.Debug("registry request failed", "err", err, "elapsed", dur)
	} else {
		t.logger.Debug("registry response", "status", resp.StatusCode, "elapsed", dur)
	}
	return resp, err
}

// NewClient builds the download client with the given User-Agent string.
func NewClient(userAgent string, opts ...Option) *Client {
	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}

	transport := o.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if o.verbose {
		logger := log.NewWithOptions(o.writer, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.DebugLevel,
		})
		transport = &loggingRoundTripper{base: transport, logger: logger}
	}
	transport = &uaRoundTripper{base: transport, userAgent: userAgent}

	return &Client{
		http:      &http.Client{Transport: transport},
		userAgent: userAgent,
	}
}

// Get issues a single GET and returns the response with its body unread, so
// callers can stream it. A non-2xx status is an error; the body is drained
// and closed in that case.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	return resp, nil
}
