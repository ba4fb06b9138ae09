package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mangabridge "github.com/opengovern/manga-bridge"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cc := c.ClientConfig()
	want := mangabridge.DefaultConfig()
	if cc.BaseURL != want.BaseURL || cc.Timeout != want.Timeout || cc.RefreshEndpoint != want.RefreshEndpoint ||
		cc.SessionEndpoint != want.SessionEndpoint || cc.LoginPath != want.LoginPath ||
		cc.CSRFCookieName != want.CSRFCookieName || cc.CSRFHeaderName != want.CSRFHeaderName {
		t.Fatalf("client config = %+v, want %+v", cc, want)
	}
	if cc.ExpireOnRejectedRetry {
		t.Fatal("expire_on_rejected_retry should default to false")
	}
	if c.Logging.Level != "info" || c.Logging.Format != "text" {
		t.Fatalf("logging = %+v", c.Logging)
	}
	if c.Session.AccessCookie != mangabridge.DefaultAccessCookieName {
		t.Fatalf("access cookie = %q", c.Session.AccessCookie)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	yaml := []byte(`
base_url: https://admin.example.com/
timeout: 3s
auth:
  expire_on_rejected_retry: true
  email: ops@example.com
rate_limit:
  rps: 5
  burst: 10
logging:
  format: json
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MANGABRIDGE_TIMEOUT", "7s")
	t.Setenv("MANGABRIDGE_AUTH_PASSWORD", "s3cret")
	t.Setenv("MANGABRIDGE_LOGGING_LEVEL", "debug")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name      string
		got, want interface{}
	}{
		{"base url trimmed", c.BaseURL, "https://admin.example.com"},
		{"env timeout wins", c.Timeout, 7 * time.Second},
		{"file bool", c.Auth.ExpireOnRejectedRetry, true},
		{"file email", c.Auth.Email, "ops@example.com"},
		{"env password", c.Auth.Password, "s3cret"},
		{"rps", c.RateLimit.RPS, 5.0},
		{"burst", c.RateLimit.Burst, 10},
		{"env level", c.Logging.Level, "debug"},
		{"file format", c.Logging.Format, "json"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	t.Setenv("MANGABRIDGE_TIMEOUT", "0s")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}
