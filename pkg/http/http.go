// Package http is the outbound HTTP client used for third-party APIs such
// as the payment provider.
//
//	resp, err := http.Post(baseURL + "/v1/checkout/sessions").
//	    BasicAuth(secretKey, "").
//	    Form(form).
//	    Retry(2, 200*time.Millisecond).
//	    Send(ctx)
//	if err != nil { ... }
//	if err := resp.Throw(); err != nil { ... }
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outbound request.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// Request is a fluent request builder.
type Request struct {
	method    string
	url       string
	headers   gohttp.Header
	body      []byte
	bodyErr   error
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	client    *gohttp.Client
}

func Get(url string) *Request    { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request   { return newRequest(gohttp.MethodPost, url) }
func Patch(url string) *Request  { return newRequest(gohttp.MethodPatch, url) }
func Delete(url string) *Request { return newRequest(gohttp.MethodDelete, url) }

func newRequest(method, url string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	return &Request{
		method:    method,
		url:       url,
		headers:   h,
		timeout:   15 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
		client:    DefaultClient,
	}
}

// Header sets one request header.
func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// Bearer sets Authorization: Bearer token.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// BasicAuth sets HTTP basic credentials.
func (r *Request) BasicAuth(user, pass string) *Request {
	req := gohttp.Request{Header: gohttp.Header{}}
	req.SetBasicAuth(user, pass)
	return r.Header("Authorization", req.Header.Get("Authorization"))
}

// JSON sends v encoded as JSON.
func (r *Request) JSON(v any) *Request {
	r.body, r.bodyErr = json.Marshal(v)
	r.headers.Set("Content-Type", "application/json")
	return r
}

// Form sends form-urlencoded values.
func (r *Request) Form(v url.Values) *Request {
	r.body = []byte(v.Encode())
	r.headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry makes n total attempts on transport errors and 5xx responses,
// doubling wait after each.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.attempts = n
	r.retryWait = wait
	return r
}

// Client overrides DefaultClient, mostly for tests.
func (r *Request) Client(c *gohttp.Client) *Request {
	r.client = c
	return r
}

// Send executes the request. A non-2xx response is not an error; call
// Throw for that.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	if r.bodyErr != nil {
		return nil, fmt.Errorf("http: encode body: %w", r.bodyErr)
	}

	var (
		resp    *Response
		lastErr error
		wait    = r.retryWait
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, lastErr = r.do(ctx)
		if lastErr == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt == r.attempts {
			break
		}
		logger.WithCtx(ctx).Warn("http: attempt failed, retrying",
			"method", r.method, "url", redact(r.url), "attempt", attempt, "error", lastErr)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}

	if lastErr != nil {
		return nil, fmt.Errorf("http: %s %s failed after %d attempts: %w", r.method, redact(r.url), r.attempts, lastErr)
	}
	return resp, nil
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = r.headers.Clone()

	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Headers: res.Header, Raw: raw}, nil
}

func redact(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode unmarshals the JSON body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// StatusError is returned by Throw for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Throw returns a *StatusError unless the status is 2xx.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	body := string(r.Raw)
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{StatusCode: r.StatusCode, Body: body}
}
