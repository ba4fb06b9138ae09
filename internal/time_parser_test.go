package internal

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
		ok    bool
	}{
		{name: "empty", value: "", ok: false},
		{name: "seconds", value: "5", want: 5 * time.Second, ok: true},
		{name: "padded seconds", value: " 12 ", want: 12 * time.Second, ok: true},
		{name: "negative", value: "-3", ok: false},
		{name: "http date", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second, ok: true},
		{name: "past http date", value: now.Add(-time.Minute).Format(http.TimeFormat), want: 0, ok: true},
		{name: "garbage", value: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.value, now)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("wait = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInFuture(t *testing.T) {
	if !IsInFuture(time.Now().Add(time.Hour).UnixMilli()) {
		t.Fatal("expected an hour from now to be in the future")
	}
	if IsInFuture(time.Now().Add(-time.Hour).UnixMilli()) {
		t.Fatal("expected an hour ago to be in the past")
	}
	if UnixToMs(3) != 3000 {
		t.Fatalf("UnixToMs(3) = %d", UnixToMs(3))
	}
}
