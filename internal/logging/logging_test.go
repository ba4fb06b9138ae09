package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", false)

	logger.Debug("hidden")
	logger.With("component", "executor").Warn("refresh failed",
		"status", 401, "endpoint", "/auth/refresh-token", "method", "POST", "error", "session revoked")

	line := buf.String()
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line written at info level: %q", line)
	}
	for _, want := range []string{
		`level=WARN msg="refresh failed" method=POST endpoint=/auth/refresh-token status=401`,
		`component=executor`,
		`error="session revoked"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") || strings.Count(line, "\n") != 1 {
		t.Errorf("want exactly one line, got %q", line)
	}
}

func TestTextHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", false).WithGroup("rate").Debug("limits", "remaining", 3)
	if !strings.Contains(buf.String(), "rate.remaining=3") {
		t.Fatalf("group not flattened: %q", buf.String())
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", true).Debug("attempt", "request_id", "abc")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "attempt" || rec["request_id"] != "abc" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if ts, _ := rec["time"].(string); len(ts) != len(timeLayout) {
		t.Fatalf("time %q not in %s layout", ts, timeLayout)
	}
}
