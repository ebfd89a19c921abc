package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Reply is one scripted response of a MockServer.
type Reply struct {
	Status int
	Body   string
	// Delay holds the reply back, or until the request is canceled.
	Delay time.Duration
}

// MockServer is a responses endpoint that plays back scripted replies in
// order, repeating the last one once the script runs out.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// Request is a request received by a MockServer.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the request body.
func (r Request) JSON() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Body, &m)
	return m
}

// NewMockServer starts a server with the given script. Close it with
// t.Cleanup(srv.Close).
func NewMockServer(replies ...Reply) *MockServer {
	m := &MockServer{replies: replies}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	n := len(m.requests)
	m.requests = append(m.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	reply := Reply{Status: http.StatusOK, Body: `{}`}
	if len(m.replies) > 0 {
		reply = m.replies[min(n, len(m.replies)-1)]
	}
	m.mu.Unlock()

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}

// Requests returns the requests received so far.
func (m *MockServer) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Hits returns the number of requests received.
func (m *MockServer) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
