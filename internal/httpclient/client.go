// Package httpclient performs GET requests with a bounded fixed-delay retry
// for transient failures. Network errors and 5xx responses are retried;
// 4xx responses fail immediately.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// ErrTransient wraps the last failure once every attempt has been used.
var ErrTransient = errors.New("transient failure persisted")

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is a server-side failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// Limiter is consulted before every attempt.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	UserAgent   string
	Limiter     Limiter
}

// Client is a retrying HTTP GET client.
type Client struct {
	http        *http.Client
	maxAttempts int
	retryDelay  time.Duration
	userAgent   string
	limiter     Limiter
}

// New returns a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	return &Client{
		http:        &http.Client{Timeout: opts.Timeout},
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		userAgent:   opts.UserAgent,
		limiter:     opts.Limiter,
	}
}

// Get fetches url and returns the body of the first 2xx response.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	attempts := 0
	op := func() ([]byte, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		return c.do(ctx, url, header)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		log.Warn("request failed, retrying", "url", url, "attempt", attempts, "max", c.maxAttempts, "wait", wait, "err", err)
	}

	body, err := backoff.RetryNotifyWithData(op, b, notify)
	if err == nil {
		return body, nil
	}

	var se *StatusError
	if errors.As(err, &se) && !se.Retryable() {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if attempts >= c.maxAttempts {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransient, attempts, err)
	}
	return nil, err
}

func (c *Client) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		se := &StatusError{StatusCode: resp.StatusCode, URL: url}
		if !se.Retryable() {
			return nil, backoff.Permanent(se)
		}
		return nil, se
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
