// Package fetch is the single place that talks raw HTTP to third-party
// pages and APIs. It performs no retries; retry policy belongs to callers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const defaultUserAgent = "TorcidaBot/1.0"

// Fetcher wraps a tuned fasthttp client.
type Fetcher struct {
	client    *fasthttp.Client
	userAgent string
}

// New creates a Fetcher with connection limits suitable for a handful of
// scrape targets.
func New() *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		},
		userAgent: defaultUserAgent,
	}
}

// Get performs a timed GET and returns the body. Non-2xx responses become a
// StatusError, deadline overruns become ErrTimeout, everything else is a
// transport failure.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	status, body, err := f.do(ctx, fasthttp.MethodGet, url, headers, timeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{URL: url, Code: status}
	}
	return body, nil
}

// Post performs a timed POST with the given body and returns the response
// body, with the same error taxonomy as Get.
func (f *Fetcher) Post(ctx context.Context, url string, headers map[string]string, payload []byte, timeout time.Duration) ([]byte, error) {
	status, body, err := f.doWithBody(ctx, fasthttp.MethodPost, url, headers, payload, timeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{URL: url, Code: status}
	}
	return body, nil
}

// Head performs a timed HEAD and returns just the status code. Non-2xx codes
// are data here, not errors; only transport failures are reported.
func (f *Fetcher) Head(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (int, error) {
	status, _, err := f.do(ctx, fasthttp.MethodHead, url, headers, timeout)
	if err != nil {
		return 0, err
	}
	return status, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) (int, []byte, error) {
	return f.doWithBody(ctx, method, url, headers, nil, timeout)
}

func (f *Fetcher) doWithBody(ctx context.Context, method, url string, headers map[string]string, payload []byte, timeout time.Duration) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set(fasthttp.HeaderUserAgent, f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if len(payload) > 0 {
		req.SetBody(payload)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return 0, nil, fmt.Errorf("%w: %s", ErrTimeout, url)
		}
		return 0, nil, fmt.Errorf("fetch: %s: %w", url, err)
	}

	// The response buffer is pooled; copy before release.
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}
