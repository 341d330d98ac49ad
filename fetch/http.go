package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tingold/geoatlas/metrics"
	"golang.org/x/time/rate"
)

// HTTPOptions configures HTTPFetcher.
type HTTPOptions struct {
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests. Zero means unlimited.
	RequestsPerSecond float64
	UserAgent         string
	// MaxBytes caps a response body.
	MaxBytes int64
	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// DefaultHTTPOptions returns a 10s timeout, 10 requests per second and a
// 20 MiB body limit.
func DefaultHTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		UserAgent:         "geoatlas/1.0",
		MaxBytes:          20 << 20,
	}
}

// HTTPFetcher downloads over HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBytes  int64
}

// NewHTTPFetcher returns a fetcher using opts, or DefaultHTTPOptions when
// opts is nil.
func NewHTTPFetcher(opts *HTTPOptions) *HTTPFetcher {
	if opts == nil {
		opts = DefaultHTTPOptions()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &HTTPFetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// Fetch waits for the rate limiter, then GETs url. Non-2xx responses and
// bodies over the size limit fail.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailure, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailure, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	metrics.FetchRequestsTotal.Inc()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailure, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailure, url, resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailure, url, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		metrics.FetchFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrFetchFailure, url, f.maxBytes)
	}
	return data, nil
}
