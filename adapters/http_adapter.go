// http_adapter.go
// ---------------
// This adapter talks to the admin backend over net/http with cookie-based sessions.
//
// Key Points:
// - One http.Client per adapter, with a fixed timeout (10s by default) and an in-memory
//   cookie jar, so the session cookies set by login/refresh ride on every later call.
// - Content-Type defaults to application/json unless the request sets one.
// - On POST/PUT/PATCH/DELETE the CSRF token is read from the XSRF-TOKEN cookie and
//   echoed in the X-XSRF-TOKEN header, when the cookie exists.
// - Transport failures (including timeouts) are returned as errors; every received
//   response, whatever its status, is returned as a NormalizedResponse.

package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	mangabridge "github.com/opengovern/manga-bridge"
)

type HTTPAdapter struct {
	baseURL        *url.URL
	csrfCookieName string
	csrfHeaderName string

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPAdapter builds an adapter for config's base URL with a fresh cookie jar.
func NewHTTPAdapter(config *mangabridge.ClientConfig) (*HTTPAdapter, error) {
	cfg := config.WithDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &HTTPAdapter{
		baseURL:        base,
		csrfCookieName: cfg.CSRFCookieName,
		csrfHeaderName: cfg.CSRFHeaderName,
		client:         &http.Client{Timeout: cfg.Timeout, Jar: jar},
	}, nil
}

// SetTransport swaps the underlying RoundTripper, keeping the jar and timeout.
func (h *HTTPAdapter) SetTransport(rt http.RoundTripper) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.client.Transport = rt
}

func (h *HTTPAdapter) httpClient() *http.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client
}

// Cookie returns the named cookie the jar would send to the base URL.
func (h *HTTPAdapter) Cookie(name string) (*http.Cookie, bool) {
	for _, c := range h.httpClient().Jar.Cookies(h.baseURL) {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// SetCookies seeds the jar, e.g. with a session obtained elsewhere.
func (h *HTTPAdapter) SetCookies(cookies ...*http.Cookie) {
	h.httpClient().Jar.SetCookies(h.baseURL, cookies)
}

func (h *HTTPAdapter) ExecuteRequest(ctx context.Context, req *mangabridge.NormalizedRequest) (*mangabridge.NormalizedResponse, error) {
	fullURL, err := h.resolve(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get(mangabridge.HeaderContentType) == "" {
		httpReq.Header.Set(mangabridge.HeaderContentType, mangabridge.ContentTypeJSON)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	}
	if isStateChanging(req.Method) && httpReq.Header.Get(h.csrfHeaderName) == "" {
		if c, ok := h.Cookie(h.csrfCookieName); ok && c.Value != "" {
			httpReq.Header.Set(h.csrfHeaderName, c.Value)
		}
	}

	resp, err := h.httpClient().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	headers := make(map[string]string)
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	return &mangabridge.NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       data,
	}, nil
}

// resolve joins the base URL and the endpoint. Endpoints arrive already escaped
// (api.path escapes each segment), so they go into RawPath untouched.
func (h *HTTPAdapter) resolve(req *mangabridge.NormalizedRequest) (string, error) {
	endpoint := req.Endpoint
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := *h.baseURL
	rawPath := strings.TrimRight(h.baseURL.EscapedPath(), "/") + endpoint
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", req.Endpoint, err)
	}
	u.Path = decoded
	u.RawPath = rawPath
	u.RawQuery = ""
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String(), nil
}

func isStateChanging(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

var (
	_ mangabridge.Adapter     = (*HTTPAdapter)(nil)
	_ mangabridge.CookieStore = (*HTTPAdapter)(nil)
)
