package graph

import (
	"context"
	"net/http"
	"sync"
	"time"

	"graphkit/pkg/logger"
)

// recordedCall is one request seen by stubRequestor.
type recordedCall struct {
	Method string
	URL    string
	Params []Parameter
}

func (c recordedCall) param(name string) (string, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// stubRequestor answers every call with the same canned response.
type stubRequestor struct {
	mu     sync.Mutex
	status int
	body   string
	err    error
	calls  []recordedCall
}

func newStub(status int, body string) *stubRequestor {
	return &stubRequestor{status: status, body: body}
}

func (s *stubRequestor) ExecuteGet(ctx context.Context, req *Request) (*Response, error) {
	return s.record(http.MethodGet, req)
}

func (s *stubRequestor) ExecutePost(ctx context.Context, req *Request) (*Response, error) {
	return s.record(http.MethodPost, req)
}

func (s *stubRequestor) record(method string, req *Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedCall{
		Method: method,
		URL:    req.URL,
		Params: append([]Parameter(nil), req.Parameters...),
	})
	if s.err != nil {
		return nil, s.err
	}
	return &Response{StatusCode: s.status, Body: s.body}, nil
}

func (s *stubRequestor) Calls() []recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedCall(nil), s.calls...)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testOptions(r WebRequestor) []Option {
	return []Option{
		WithWebRequestor(r),
		WithLogger(logger.NewNopLogger()),
		WithClock(func() time.Time { return fixedNow }),
		WithEndpoints(SingleHost("https://graph.test")),
	}
}
