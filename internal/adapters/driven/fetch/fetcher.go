package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/logger"
	"github.com/custodia-labs/marketbrief/internal/retry"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Retryable reports whether the status may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher performs GET requests with timeout, rate limiting and retry.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *HostLimiter
	policy    retry.Policy
}

// New creates a Fetcher from fetch settings.
func New(settings domain.FetchSettings) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: settings.Timeout},
		userAgent: settings.UserAgent,
		limiter:   NewHostLimiter(settings.RatePerHost),
		policy:    retry.Policy{Attempts: settings.Retries, Backoff: settings.Backoff},
	}
}

// Get fetches rawURL and hands the body to decode. Transport errors,
// 429 and 5xx responses are retried; other 4xx responses and decode
// errors are not. Failure is returned as *domain.SourceError.
func (f *Fetcher) Get(ctx context.Context, source, rawURL string, decode func(body []byte) error) error {
	attempts, err := f.policy.Do(ctx, func(ctx context.Context) error {
		body, err := f.get(ctx, rawURL)
		if err != nil {
			logger.Debug("%s: attempt failed: %v", source, err)
			return err
		}
		if err := decode(body); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		return &domain.SourceError{Source: source, Attempts: attempts, Err: err}
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, retry.Permanent(fmt.Errorf("rate limit: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/json, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		serr := &StatusError{URL: rawURL, Code: resp.StatusCode}
		if serr.Retryable() {
			return nil, serr
		}
		return nil, retry.Permanent(serr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
