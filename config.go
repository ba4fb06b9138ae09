// config.go
// ----------
// This file defines ClientConfig, the shared settings every request of a Client is
// issued with: the backend origin, the per-call timeout, the CSRF cookie/header pair,
// the auth endpoints used by the refresh-and-retry cycle and optional client-side
// throttling.
//
// Zero fields fall back to the defaults below, so an empty ClientConfig talks to a
// local backend on port 3000.
package mangabridge

import (
	"strings"
	"time"
)

const (
	DefaultBaseURL         = "http://localhost:3000"
	DefaultTimeout         = 10 * time.Second
	DefaultCSRFCookieName  = "XSRF-TOKEN"
	DefaultCSRFHeaderName  = "X-XSRF-TOKEN"
	DefaultRefreshEndpoint = "/auth/refresh-token"
	DefaultSessionEndpoint = "/auth/me"
	DefaultLoginPath       = "/login"
)

// ClientConfig allows customization of the origin, credentials policy and retry behavior.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	CSRFCookieName string
	CSRFHeaderName string

	RefreshEndpoint string // POST, no body
	SessionEndpoint string // GET, "who am I"
	// LoginPath is where the user is sent once the session cannot be refreshed.
	// A path is resolved against BaseURL; an absolute URL (the dashboard origin,
	// when it differs from the API) is used as is.
	LoginPath string

	// ExpireOnRejectedRetry also reports an expired session when the retried
	// request is still rejected with 401/403.
	ExpireOnRejectedRetry bool

	RequestsPerSecond float64 // 0 disables client-side throttling
	Burst             int
}

// DefaultConfig returns a config filled with the package defaults.
func DefaultConfig() *ClientConfig {
	return (&ClientConfig{}).WithDefaults()
}

// WithDefaults returns a copy with every empty field set to its default.
func (c *ClientConfig) WithDefaults() *ClientConfig {
	out := ClientConfig{}
	if c != nil {
		out = *c
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	out.BaseURL = strings.TrimRight(out.BaseURL, "/")
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.CSRFCookieName == "" {
		out.CSRFCookieName = DefaultCSRFCookieName
	}
	if out.CSRFHeaderName == "" {
		out.CSRFHeaderName = DefaultCSRFHeaderName
	}
	if out.RefreshEndpoint == "" {
		out.RefreshEndpoint = DefaultRefreshEndpoint
	}
	if out.SessionEndpoint == "" {
		out.SessionEndpoint = DefaultSessionEndpoint
	}
	if out.LoginPath == "" {
		out.LoginPath = DefaultLoginPath
	}
	if out.Burst <= 0 {
		out.Burst = 1
	}
	return &out
}

// LoginURL is the absolute address of the login route handed to the
// SessionExpiredHandler.
func (c ClientConfig) LoginURL() string {
	if strings.HasPrefix(c.LoginPath, "http://") || strings.HasPrefix(c.LoginPath, "https://") {
		return c.LoginPath
	}
	return strings.TrimRight(c.BaseURL, "/") + c.LoginPath
}
