package mangabridge

import (
	"context"
	"net/http"
)

// RequestExecutor runs the per-request state machine: send, and on a 401/403 refresh
// the session once and re-send the original request once.
type RequestExecutor struct {
	client *Client
}

func NewRequestExecutor(client *Client) *RequestExecutor {
	return &RequestExecutor{client: client}
}

// attempt carries the request record through the retry continuation together with
// whether a refresh already happened for it. The record itself is never mutated.
type attempt struct {
	req     *NormalizedRequest
	retried bool
}

// Execute sends req and transparently recovers from a single authorization failure.
func (re *RequestExecutor) Execute(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error) {
	return re.executeAttempt(ctx, attempt{req: req})
}

func (re *RequestExecutor) executeAttempt(ctx context.Context, a attempt) (*NormalizedResponse, error) {
	resp, err := re.sendOnce(ctx, a.req)
	if err == nil {
		if a.retried {
			re.client.debugf("%s %s: succeeded after session refresh", a.req.Method, a.req.Endpoint)
		}
		re.client.authenticated.Store(true)
		return resp, nil
	}

	if !IsAuthFailure(err) {
		return nil, err
	}

	if a.retried {
		re.client.debugf("%s %s: still rejected after session refresh, giving up", a.req.Method, a.req.Endpoint)
		if re.client.config.ExpireOnRejectedRetry {
			re.client.expireSession(ctx, err)
		}
		return nil, err
	}

	re.client.debugf("%s %s: status %d, refreshing session", a.req.Method, a.req.Endpoint, StatusCode(err))
	if rerr := re.refresh(ctx); rerr != nil {
		re.client.expireSession(ctx, rerr)
		return nil, rerr
	}

	return re.executeAttempt(ctx, attempt{req: a.req, retried: true})
}

// refresh calls the refresh endpoint directly, outside the interceptor, so a
// rejected refresh can never start another refresh.
func (re *RequestExecutor) refresh(ctx context.Context) error {
	req := re.client.prepare(&NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: re.client.config.RefreshEndpoint,
	})
	if _, err := re.sendOnce(ctx, req); err != nil {
		re.client.logger().ErrorContext(ctx, "session refresh failed",
			"endpoint", req.Endpoint, "status", StatusCode(err), "error", err)
		return err
	}
	re.client.debugf("session refreshed")
	return nil
}

// sendOnce issues exactly one call and classifies the outcome. It never retries.
func (re *RequestExecutor) sendOnce(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error) {
	if err := re.client.rateLimiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Method: req.Method, Endpoint: req.Endpoint, Err: err}
	}

	re.client.debugf("%s %s: sending (request id %s)", req.Method, req.Endpoint, req.Headers[HeaderRequestID])
	resp, err := re.client.adapter.ExecuteRequest(ctx, req)
	if err != nil {
		nerr := &NetworkError{Method: req.Method, Endpoint: req.Endpoint, Err: err}
		re.client.logger().ErrorContext(ctx, "network error, no response received",
			"method", req.Method, "endpoint", req.Endpoint, "error", err)
		return nil, nerr
	}

	re.client.rateLimiter.UpdateRateLimits(resp)

	if resp.StatusCode >= 400 {
		re.client.debugf("%s %s: status %d", req.Method, req.Endpoint, resp.StatusCode)
		return nil, newHTTPError(req, resp)
	}
	return resp, nil
}
