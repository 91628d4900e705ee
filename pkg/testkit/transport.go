package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Stub is one canned response. Method and URLPrefix select the request;
// an empty field matches anything.
type Stub struct {
	Method    string
	URLPrefix string
	Status    int
	Body      string
}

// Transport is an http.RoundTripper that answers from stubs and records
// every request it saw. Unmatched requests fail with an error.
//
//	tr := testkit.NewTransport(testkit.Stub{Method: "POST", Status: 200, Body: `{}`})
//	client := &http.Client{Transport: tr}
type Transport struct {
	mu       sync.Mutex
	stubs    []Stub
	requests []Recorded
}

// Recorded is a request seen by a Transport, body included.
type Recorded struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

func NewTransport(stubs ...Stub) *Transport {
	return &Transport{stubs: stubs}
}

func (tr *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.requests = append(tr.requests, Recorded{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   string(body),
	})

	for _, s := range tr.stubs {
		if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
			continue
		}
		if s.URLPrefix != "" && !strings.HasPrefix(req.URL.String(), s.URLPrefix) {
			continue
		}
		code := s.Status
		if code == 0 {
			code = http.StatusOK
		}
		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader([]byte(s.Body))),
			Request:    req,
		}, nil
	}
	return nil, fmt.Errorf("testkit: no stub for %s %s", req.Method, req.URL)
}

// Requests returns the requests seen so far.
func (tr *Transport) Requests() []Recorded {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]Recorded(nil), tr.requests...)
}

// Client returns an *http.Client using tr.
func (tr *Transport) Client() *http.Client { return &http.Client{Transport: tr} }
