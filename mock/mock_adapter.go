package mock

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	mangabridge "github.com/opengovern/manga-bridge"
)

// Reply is one scripted outcome. A non-nil Err simulates a call that got no response.
type Reply struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Err        error
}

// MockAdapter replays scripted replies per "METHOD endpoint" and records every call.
// Once a script is down to its last reply, that reply is repeated.
type MockAdapter struct {
	mu      sync.Mutex
	scripts map[string][]Reply
	calls   []mangabridge.NormalizedRequest
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{scripts: make(map[string][]Reply)}
}

// On appends replies for method and endpoint and returns the adapter for chaining.
func (m *MockAdapter) On(method, endpoint string, replies ...Reply) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + endpoint
	m.scripts[key] = append(m.scripts[key], replies...)
	return m
}

func (m *MockAdapter) ExecuteRequest(ctx context.Context, req *mangabridge.NormalizedRequest) (*mangabridge.NormalizedResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *req)
	key := req.Method + " " + req.Endpoint
	script := m.scripts[key]
	var reply Reply
	switch len(script) {
	case 0:
		reply = Reply{StatusCode: http.StatusNotFound, Body: `{"httpCode":404,"success":false,"message":"no scripted reply"}`}
	case 1:
		reply = script[0]
	default:
		reply = script[0]
		m.scripts[key] = script[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	headers := map[string]string{}
	for k, v := range reply.Headers {
		headers[k] = v
	}
	return &mangabridge.NormalizedResponse{
		StatusCode: reply.StatusCode,
		Headers:    headers,
		Data:       []byte(reply.Body),
	}, nil
}

// Calls returns a copy of every request received, in order.
func (m *MockAdapter) Calls() []mangabridge.NormalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mangabridge.NormalizedRequest(nil), m.calls...)
}

// CallCount counts the requests received for method and endpoint.
func (m *MockAdapter) CallCount(method, endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method && c.Endpoint == endpoint {
			n++
		}
	}
	return n
}

// Envelope renders a success envelope body around data.
func Envelope(status int, message string, data string) string {
	if data == "" {
		data = "null"
	}
	return fmt.Sprintf(`{"httpCode":%d,"success":%t,"message":%q,"data":%s}`, status, status < 400, message, data)
}

var _ mangabridge.Adapter = (*MockAdapter)(nil)
