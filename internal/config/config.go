// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	mangabridge "github.com/opengovern/manga-bridge"
)

const EnvPrefix = "MANGABRIDGE"

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	CSRF    struct {
		CookieName string `mapstructure:"cookie_name"`
		HeaderName string `mapstructure:"header_name"`
	} `mapstructure:"csrf"`
	Auth struct {
		RefreshEndpoint       string `mapstructure:"refresh_endpoint"`
		SessionEndpoint       string `mapstructure:"session_endpoint"`
		LoginPath             string `mapstructure:"login_path"`
		ExpireOnRejectedRetry bool   `mapstructure:"expire_on_rejected_retry"`
		Email                 string `mapstructure:"email"`
		Password              string `mapstructure:"password"`
	} `mapstructure:"auth"`
	// Session seeds the cookie jar with tokens obtained elsewhere, e.g. copied
	// from a browser.
	Session struct {
		AccessCookie  string `mapstructure:"access_cookie"`
		RefreshCookie string `mapstructure:"refresh_cookie"`
		AccessToken   string `mapstructure:"access_token"`
		RefreshToken  string `mapstructure:"refresh_token"`
	} `mapstructure:"session"`
	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// Load reads path (if not empty) and MANGABRIDGE_* environment overrides on top
// of the client defaults. Without a path, config.yaml in the working directory is
// used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	def := mangabridge.DefaultConfig()

	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("timeout", def.Timeout.String())
	v.SetDefault("csrf.cookie_name", def.CSRFCookieName)
	v.SetDefault("csrf.header_name", def.CSRFHeaderName)
	v.SetDefault("auth.refresh_endpoint", def.RefreshEndpoint)
	v.SetDefault("auth.session_endpoint", def.SessionEndpoint)
	v.SetDefault("auth.login_path", def.LoginPath)
	v.SetDefault("auth.expire_on_rejected_retry", false)
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("session.access_cookie", mangabridge.DefaultAccessCookieName)
	v.SetDefault("session.refresh_cookie", "refresh_token")
	v.SetDefault("session.access_token", "")
	v.SetDefault("session.refresh_token", "")
	v.SetDefault("rate_limit.rps", 0.0)
	v.SetDefault("rate_limit.burst", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return Config{}, errors.New("config error: base_url/MANGABRIDGE_BASE_URL required")
	}
	if c.Timeout <= 0 {
		return Config{}, fmt.Errorf("config error: timeout must be positive, got %s", c.Timeout)
	}
	return c, nil
}

// ClientConfig converts c into the client's configuration.
func (c Config) ClientConfig() *mangabridge.ClientConfig {
	return &mangabridge.ClientConfig{
		BaseURL:               c.BaseURL,
		Timeout:               c.Timeout,
		CSRFCookieName:        c.CSRF.CookieName,
		CSRFHeaderName:        c.CSRF.HeaderName,
		RefreshEndpoint:       c.Auth.RefreshEndpoint,
		SessionEndpoint:       c.Auth.SessionEndpoint,
		LoginPath:             c.Auth.LoginPath,
		ExpireOnRejectedRetry: c.Auth.ExpireOnRejectedRetry,
		RequestsPerSecond:     c.RateLimit.RPS,
		Burst:                 c.RateLimit.Burst,
	}
}
