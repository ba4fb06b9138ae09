package mangabridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestRateLimiter_UnlimitedByDefault(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}

func TestRateLimiter_PausesAfterRetryAfter(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	rl.UpdateRateLimits(&NormalizedResponse{
		StatusCode: http.StatusTooManyRequests,
		Headers:    map[string]string{"retry-after": "30"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the pause to outlast the context, got %v", err)
	}
}

func TestRateLimiter_RecordsHeaders(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	if rl.GetRateLimitInfo() != nil {
		t.Fatal("expected no info before any response")
	}

	reset := time.Now().Add(time.Minute).Unix()
	rl.UpdateRateLimits(&NormalizedResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"x-ratelimit-limit":     "100",
			"x-ratelimit-remaining": "42",
			"x-ratelimit-reset":     strconv.FormatInt(reset, 10),
		},
	})

	info := rl.GetRateLimitInfo()
	if info == nil || *info.MaxRequests != 100 || *info.RemainingRequests != 42 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if *info.ResetRequestsAt != reset*1000 {
		t.Fatalf("reset = %d, want %d", *info.ResetRequestsAt, reset*1000)
	}

	// A response without headers keeps the last known values.
	rl.UpdateRateLimits(&NormalizedResponse{StatusCode: http.StatusOK, Headers: map[string]string{}})
	if rl.GetRateLimitInfo() == nil {
		t.Fatal("info dropped by a header-less response")
	}
}
