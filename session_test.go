package mangabridge_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	mangabridge "github.com/opengovern/manga-bridge"
	"github.com/opengovern/manga-bridge/mock"
)

type cookieMap map[string]*http.Cookie

func (m cookieMap) Cookie(name string) (*http.Cookie, bool) {
	c, ok := m[name]
	return c, ok
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestSessionTokenSource(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	cookieExp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name       string
		store      cookieMap
		cookieName string
		wantErr    error
		wantExpiry time.Time
	}{
		{
			name:       "jwt exp claim",
			store:      cookieMap{"access_token": {Name: "access_token", Value: signedToken(t, exp)}},
			wantExpiry: exp,
		},
		{
			name:       "opaque value falls back to cookie expiry",
			store:      cookieMap{"sid": {Name: "sid", Value: "opaque", Expires: cookieExp}},
			cookieName: "sid",
			wantExpiry: cookieExp,
		},
		{
			name:    "missing cookie",
			store:   cookieMap{},
			wantErr: mangabridge.ErrNoSessionCookie,
		},
		{
			name:    "empty cookie",
			store:   cookieMap{"access_token": {Name: "access_token"}},
			wantErr: mangabridge.ErrNoSessionCookie,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mangabridge.SessionTokenSource{Store: tt.store, CookieName: tt.cookieName}
			tok, err := src.Token()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Token: %v", err)
			}
			if !tok.Expiry.Equal(tt.wantExpiry) {
				t.Fatalf("expiry = %v, want %v", tok.Expiry, tt.wantExpiry)
			}
			if tok.TokenType != "Cookie" || tok.AccessToken == "" {
				t.Fatalf("unexpected token: %+v", tok)
			}
		})
	}
}

func TestClientSessionToken_AdapterWithoutCookies(t *testing.T) {
	client, err := mangabridge.NewClient(mock.NewMockAdapter(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.SessionToken(""); !errors.Is(err, mangabridge.ErrCookiesUnsupported) {
		t.Fatalf("err = %v, want ErrCookiesUnsupported", err)
	}
}
