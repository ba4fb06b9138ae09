package mangabridge

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoSessionCookie is returned when the access cookie is not in the jar.
	ErrNoSessionCookie = errors.New("no session cookie")
	// ErrCookiesUnsupported is returned when the adapter keeps no cookie jar.
	ErrCookiesUnsupported = errors.New("adapter does not expose cookies")
)

// HTTPError is returned for every response with a status of 400 or more.
type HTTPError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Response   *NormalizedResponse
	Envelope   *CustomResponse // nil when the body was not an envelope
}

func (e *HTTPError) Error() string {
	msg := http.StatusText(e.StatusCode)
	if e.Envelope != nil && e.Envelope.Message != "" {
		msg = e.Envelope.Message
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, msg)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func newHTTPError(req *NormalizedRequest, resp *NormalizedResponse) *HTTPError {
	herr := &HTTPError{
		Method:     req.Method,
		Endpoint:   req.Endpoint,
		StatusCode: resp.StatusCode,
		Response:   resp,
	}
	if env, err := DecodeEnvelope(resp); err == nil {
		herr.Envelope = env
	}
	return herr
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

// IsAuthFailure reports whether err is a 401 or 403 response.
func IsAuthFailure(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}
