// client.go
// ---------
// The client.go file contains the Client struct and its methods. This is the main
// entry point of the SDK for users.
//
// Key functionalities include:
// - Creating a client for one backend with NewClient()
// - Making requests via Request() / Send() and the Get/Post/Put/Delete helpers
// - Checking the current session at startup with FetchCurrentSession()
// - Reporting an unrecoverable session to a SessionExpiredHandler
//
// The Client relies on a RequestExecutor for the refresh-and-retry cycle and on a
// RateLimiter for optional client-side throttling.
package mangabridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

type Client struct {
	mu          sync.Mutex
	config      *ClientConfig
	adapter     Adapter
	rateLimiter *RateLimiter
	executor    *RequestExecutor

	log       *slog.Logger
	onExpired SessionExpiredHandler

	authenticated atomic.Bool

	Debug bool // If true, log every attempt at debug level
}

// NewClient builds a client that sends through adapter. A nil config uses DefaultConfig.
func NewClient(adapter Adapter, config *ClientConfig) (*Client, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter must not be nil")
	}
	cfg := config.WithDefaults()
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	c := &Client{
		config:      cfg,
		adapter:     adapter,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
	c.executor = NewRequestExecutor(c)
	return c, nil
}

// SetDebug enables or disables per-attempt debug logging.
func (c *Client) SetDebug(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Debug = enabled
}

// SetLogger replaces the logger; nil restores slog.Default().
func (c *Client) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = logger
}

// SetSessionExpiredHandler installs the collaborator told about unrecoverable sessions.
func (c *Client) SetSessionExpiredHandler(h SessionExpiredHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = h
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// Adapter returns the transport the client sends through.
func (c *Client) Adapter() Adapter {
	return c.adapter
}

// Authenticated reports whether the last outcome suggested a live session.
// The server stays the source of truth.
func (c *Client) Authenticated() bool {
	return c.authenticated.Load()
}

// Request sends req, refreshing the session and retrying once on 401/403.
func (c *Client) Request(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request must not be nil")
	}
	return c.executor.Execute(ctx, c.prepare(req))
}

// RequestOnce sends req exactly once with the client defaults but without the
// refresh-and-retry cycle. Login and logout go through here, where a 401 means bad
// credentials rather than an expired session.
func (c *Client) RequestOnce(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request must not be nil")
	}
	return c.executor.sendOnce(ctx, c.prepare(req))
}

// Send is Request followed by decoding the response envelope.
func (c *Client) Send(ctx context.Context, req *NormalizedRequest) (*CustomResponse, error) {
	resp, err := c.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(resp)
}

func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*CustomResponse, error) {
	return c.Send(ctx, &NormalizedRequest{Method: http.MethodGet, Endpoint: endpoint, Query: query})
}

func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (*CustomResponse, error) {
	return c.sendJSON(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) Put(ctx context.Context, endpoint string, body interface{}) (*CustomResponse, error) {
	return c.sendJSON(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) Delete(ctx context.Context, endpoint string) (*CustomResponse, error) {
	return c.Send(ctx, &NormalizedRequest{Method: http.MethodDelete, Endpoint: endpoint})
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, body interface{}) (*CustomResponse, error) {
	req := &NormalizedRequest{Method: method, Endpoint: endpoint}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, endpoint, err)
		}
		req.Body = data
	}
	return c.Send(ctx, req)
}

// FetchCurrentSession asks the session endpoint who is signed in. It has its own
// one-refresh policy and does not go through the interceptor, so at most one refresh
// happens even when the endpoint rejects both calls.
func (c *Client) FetchCurrentSession(ctx context.Context) (*CustomResponse, error) {
	req := c.prepare(&NormalizedRequest{Method: http.MethodGet, Endpoint: c.config.SessionEndpoint})

	resp, err := c.executor.sendOnce(ctx, req)
	if err != nil && IsAuthFailure(err) {
		if rerr := c.executor.refresh(ctx); rerr != nil {
			c.expireSession(ctx, rerr)
			return nil, rerr
		}
		resp, err = c.executor.sendOnce(ctx, req)
	}
	if err != nil {
		c.authenticated.Store(false)
		return nil, err
	}

	c.authenticated.Store(true)
	return DecodeEnvelope(resp)
}

// GetRateLimitInfo returns the latest rate limit information reported by the backend.
func (c *Client) GetRateLimitInfo() *NormalizedRateLimitInfo {
	return c.rateLimiter.GetRateLimitInfo()
}

// prepare clones req and merges the client defaults into the copy. The request ID
// is fixed here so a retry carries the same one.
func (c *Client) prepare(req *NormalizedRequest) *NormalizedRequest {
	out := req.clone()
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	if _, ok := out.Headers[HeaderRequestID]; !ok {
		out.Headers[HeaderRequestID] = uuid.NewString()
	}
	return out
}

func (c *Client) expireSession(ctx context.Context, cause error) {
	c.authenticated.Store(false)

	c.mu.Lock()
	h := c.onExpired
	c.mu.Unlock()
	if h == nil {
		h = logSessionExpired{logger: c.logger()}
	}
	h.SessionExpired(ctx, c.config.LoginURL(), cause)
}

func (c *Client) logger() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.log != nil {
		return c.log
	}
	return slog.Default()
}

// debugf logs at debug level if Debug mode is enabled.
func (c *Client) debugf(format string, args ...interface{}) {
	c.mu.Lock()
	debug := c.Debug
	c.mu.Unlock()
	if debug {
		c.logger().Debug(fmt.Sprintf(format, args...))
	}
}
