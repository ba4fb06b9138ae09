package mangabridge

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/opengovern/manga-bridge/internal"
)

const DefaultAccessCookieName = "access_token"

// CookieStore is implemented by adapters that keep a cookie jar.
type CookieStore interface {
	Cookie(name string) (*http.Cookie, bool)
}

// SessionTokenSource exposes the access cookie as an oauth2.Token. The expiry comes
// from the token's exp claim when it is a JWT, otherwise from the cookie itself.
type SessionTokenSource struct {
	Store      CookieStore
	CookieName string
}

var _ oauth2.TokenSource = (*SessionTokenSource)(nil)

func (s *SessionTokenSource) Token() (*oauth2.Token, error) {
	name := s.CookieName
	if name == "" {
		name = DefaultAccessCookieName
	}
	cookie, ok := s.Store.Cookie(name)
	if !ok || cookie.Value == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSessionCookie, name)
	}

	tok := &oauth2.Token{AccessToken: cookie.Value, TokenType: "Cookie"}
	if exp, err := internal.TokenExpiry(cookie.Value); err == nil {
		tok.Expiry = exp
	} else if !cookie.Expires.IsZero() {
		tok.Expiry = cookie.Expires
	}
	return tok, nil
}

// SessionToken returns the current access cookie of the client's adapter.
func (c *Client) SessionToken(cookieName string) (*oauth2.Token, error) {
	store, ok := c.adapter.(CookieStore)
	if !ok {
		return nil, ErrCookiesUnsupported
	}
	return (&SessionTokenSource{Store: store, CookieName: cookieName}).Token()
}
