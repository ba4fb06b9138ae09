// rate_limiter.go
// ----------------
// This file defines the RateLimiter type, which throttles outgoing calls on the client
// side and keeps the latest rate limit information the backend reported.
//
// Responsibilities:
// - Spacing calls with a token bucket (golang.org/x/time/rate). A zero rate disables it.
// - Recording x-ratelimit-limit / x-ratelimit-remaining / x-ratelimit-reset headers.
// - Pausing every caller until the Retry-After instant once the backend answered 429.
//   The 429 itself is still returned to its caller; nothing is retried here.
package mangabridge

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/opengovern/manga-bridge/internal"
)

type NormalizedRateLimitInfo struct {
	MaxRequests       *int
	RemainingRequests *int
	ResetRequestsAt   *int64 // unix ms
}

type RateLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	info        *NormalizedRateLimitInfo
	pausedUntil time.Time
}

// NewRateLimiter allows rps calls per second with the given burst. rps <= 0 means unlimited.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a call may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if delay := r.delayBeforeNextRequest(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// UpdateRateLimits records the rate limit headers of resp.
func (r *RateLimiter) UpdateRateLimits(resp *NormalizedResponse) {
	if resp == nil {
		return
	}
	h := resp.Headers
	parseInt := func(key string) *int {
		if val, ok := h[key]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				return &i
			}
		}
		return nil
	}

	info := &NormalizedRateLimitInfo{
		MaxRequests:       parseInt("x-ratelimit-limit"),
		RemainingRequests: parseInt("x-ratelimit-remaining"),
	}
	if val, ok := h["x-ratelimit-reset"]; ok {
		if secs, err := strconv.ParseInt(val, 10, 64); err == nil {
			// Small values are "seconds from now", large ones a unix timestamp.
			ms := internal.UnixToMs(secs)
			if secs < 1_000_000_000 {
				ms = time.Now().UnixMilli() + internal.UnixToMs(secs)
			}
			info.ResetRequestsAt = &ms
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if resp.StatusCode == http.StatusTooManyRequests {
		if wait, ok := internal.ParseRetryAfter(h["retry-after"], time.Now()); ok {
			until := time.Now().Add(wait)
			if until.After(r.pausedUntil) {
				r.pausedUntil = until
			}
		} else if info.ResetRequestsAt != nil && internal.IsInFuture(*info.ResetRequestsAt) {
			r.pausedUntil = time.UnixMilli(*info.ResetRequestsAt)
		}
	}

	if info.MaxRequests == nil && info.RemainingRequests == nil && info.ResetRequestsAt == nil {
		return
	}
	r.info = info
}

func (r *RateLimiter) delayBeforeNextRequest() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Until(r.pausedUntil)
}

// GetRateLimitInfo returns a copy of the latest reported limits, or nil if none were seen.
func (r *RateLimiter) GetRateLimitInfo() *NormalizedRateLimitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info == nil {
		return nil
	}
	copyInfo := *r.info
	return &copyInfo
}
