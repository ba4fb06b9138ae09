package mock

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mangabridge "github.com/opengovern/manga-bridge"
	"github.com/opengovern/manga-bridge/api"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"

	DefaultAccessTTL = 15 * time.Minute

	// A rotated refresh token is still accepted this long, so concurrent
	// refreshes that raced on the same cookie all succeed.
	RefreshGrace = 10 * time.Second
)

// Server is an in-memory stand-in for the admin backend. It speaks the same
// envelope, cookie session and CSRF protocol, and lets tests break the session
// on purpose.
type Server struct {
	mu   sync.Mutex
	echo *echo.Echo

	signingKey []byte
	accessTTL  time.Duration
	accessGen  int
	now        func() time.Time

	passwords     map[string][]byte // email -> bcrypt hash
	refreshTokens map[string]string // token -> user id
	rotated       map[string]rotatedToken
	refreshStatus int
	refreshCalls  int
	requests      map[string]int

	users      map[string]*api.User
	categories map[string]*api.Category // by slug
	featured   []string
	books      map[string]*api.Book    // by slug
	chapters   map[string]*api.Chapter // by "book/chapter"
	orders     map[string]*api.Order
}

type rotatedToken struct {
	userID string
	at     time.Time
}

type accessClaims struct {
	Role string `json:"role"`
	Gen  int    `json:"gen"`
	jwt.RegisteredClaims
}

func NewServer() *Server {
	s := &Server{
		signingKey:    []byte(uuid.NewString()),
		accessTTL:     DefaultAccessTTL,
		now:           time.Now,
		passwords:     make(map[string][]byte),
		refreshTokens: make(map[string]string),
		rotated:       make(map[string]rotatedToken),
		requests:      make(map[string]int),
		users:         make(map[string]*api.User),
		categories:    make(map[string]*api.Category),
		books:         make(map[string]*api.Book),
		chapters:      make(map[string]*api.Chapter),
		orders:        make(map[string]*api.Order),
	}
	s.seed()
	s.echo = s.routes()
	return s
}

// Handler returns the echo application; it satisfies http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until the process exits or Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessGen++
}

// RevokeRefreshTokens forgets every refresh token, so the next refresh fails with 401.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]string)
	s.rotated = make(map[string]rotatedToken)
}

// SetRefreshStatus forces the refresh endpoint to answer with status. 0 restores normal behavior.
func (s *Server) SetRefreshStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

func (s *Server) SetAccessTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = ttl
}

func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// RequestCount returns how many requests hit method and path.
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// AddUser registers an account that can log in and returns its ID.
func (s *Server) AddUser(email, password, username string, role api.UserRole) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	u := &api.User{
		ID:            uuid.NewString(),
		Role:          role,
		Username:      username,
		Email:         email,
		AccountStatus: api.AccountVerified,
		CreatedAt:     &now,
		UpdatedAt:     &now,
	}
	s.users[u.ID] = u
	s.passwords[email] = hashPassword(password)
	return u.ID
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(s.countRequests)

	e.POST("/auth/login", s.login)
	e.POST("/auth/refresh-token", s.refresh)
	e.POST("/auth/logout", s.logout)

	secured := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{s.requireSession, s.requireCSRF}, extra...)
	}
	editors := secured(s.requireRole(api.RoleAdmin, api.RolePublisher))
	admins := secured(s.requireRole(api.RoleAdmin))

	e.GET("/auth/me", s.me, secured()...)

	e.GET("/books", s.listBooks, secured()...)
	e.POST("/books", s.createBook, editors...)
	e.GET("/books/:slug", s.getBook, secured()...)
	e.PUT("/books/:slug", s.updateBook, editors...)
	e.DELETE("/books/:slug", s.deleteBook, admins...) // the segment carries the book ID here
	e.GET("/category", s.listPublicCategories, secured()...)
	e.GET("/category/feature", s.listFeaturedCategories, secured()...)
	e.GET("/chapters/:book/:chapter", s.getChapter, secured()...)
	e.PUT("/chapters/:book/:chapter", s.updateChapter, editors...)

	e.GET("/admin/category", s.listCategories, admins...)
	e.GET("/admin/category/:slug", s.getCategory, admins...)
	e.PUT("/admin/category/:slug", s.updateCategory, admins...)
	e.GET("/admin/user", s.listUsers, admins...)
	e.GET("/admin/user/:id", s.getUser, admins...)
	e.PUT("/admin/user/:id", s.updateUser, admins...)
	e.DELETE("/admin/user/:id", s.deleteUser, admins...)
	e.GET("/api/orders", s.listOrders, admins...)
	e.GET("/api/orders/:id", s.getOrder, admins...)
	e.PUT("/api/orders/:id/cancel", s.cancelOrder, admins...)

	return e
}

func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requests[c.Request().Method+" "+c.Request().URL.Path]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	}
	_ = respond(c, status, message, nil, nil)
}

func respond(c echo.Context, status int, message string, data interface{}, page *mangabridge.Pagination) error {
	body := map[string]interface{}{
		"httpCode": status,
		"success":  status < 400,
		"message":  message,
	}
	if data != nil {
		body["data"] = data
	}
	if page != nil {
		body["pagination"] = page
	}
	if status >= 400 {
		body["error"] = http.StatusText(status)
	}
	return c.JSON(status, body)
}

func fail(status int, message string) error {
	return echo.NewHTTPError(status, message)
}

// --- session ---

func (s *Server) login(c echo.Context) error {
	var payload api.LoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(http.StatusBadRequest, "invalid login payload")
	}

	s.mu.Lock()
	hash, ok := s.passwords[payload.Email]
	var user *api.User
	if u := s.userByEmailLocked(payload.Email); ok && u != nil {
		snapshot := *u
		user = &snapshot
	}
	s.mu.Unlock()

	if user != nil && bcrypt.CompareHashAndPassword(hash, []byte(payload.Password)) != nil {
		user = nil
	}

	if user == nil {
		return fail(http.StatusUnauthorized, "invalid email or password")
	}
	if user.AccountStatus == api.AccountBanned {
		return fail(http.StatusForbidden, "account banned")
	}
	if err := s.issueSession(c, user); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "login success", user, nil)
}

func (s *Server) refresh(c echo.Context) error {
	s.mu.Lock()
	s.refreshCalls++
	forced := s.refreshStatus
	s.mu.Unlock()

	if forced != 0 {
		return fail(forced, "refresh unavailable")
	}

	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return fail(http.StatusUnauthorized, "missing refresh token")
	}

	s.mu.Lock()
	userID, ok := s.refreshTokens[cookie.Value]
	if ok {
		delete(s.refreshTokens, cookie.Value)
		s.rotated[cookie.Value] = rotatedToken{userID: userID, at: s.now()}
	} else if r, seen := s.rotated[cookie.Value]; seen && s.now().Sub(r.at) < RefreshGrace {
		userID, ok = r.userID, true
	}
	var user *api.User
	if u := s.users[userID]; u != nil {
		snapshot := *u
		user = &snapshot
	}
	s.mu.Unlock()

	if !ok || user == nil {
		return fail(http.StatusUnauthorized, "refresh token revoked")
	}
	if err := s.issueSession(c, user); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "token refreshed", nil, nil)
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(RefreshCookieName); err == nil {
		s.mu.Lock()
		delete(s.refreshTokens, cookie.Value)
		delete(s.rotated, cookie.Value)
		s.mu.Unlock()
	}
	for _, name := range []string{AccessCookieName, RefreshCookieName, mangabridge.DefaultCSRFCookieName} {
		c.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	return respond(c, http.StatusOK, "logged out", nil, nil)
}

func (s *Server) me(c echo.Context) error {
	return respond(c, http.StatusOK, "ok", c.Get("user"), nil)
}

func (s *Server) issueSession(c echo.Context, user *api.User) error {
	s.mu.Lock()
	now := s.now()
	claims := accessClaims{
		Role: string(user.Role),
		Gen:  s.accessGen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	refreshToken := uuid.NewString()
	s.refreshTokens[refreshToken] = user.ID
	key := s.signingKey
	s.mu.Unlock()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("sign access token: %w", err)
	}

	c.SetCookie(&http.Cookie{Name: AccessCookieName, Value: access, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	c.SetCookie(&http.Cookie{Name: RefreshCookieName, Value: refreshToken, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	c.SetCookie(&http.Cookie{Name: mangabridge.DefaultCSRFCookieName, Value: uuid.NewString(), Path: "/", SameSite: http.SameSiteLaxMode})
	return nil
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(AccessCookieName)
		if err != nil || cookie.Value == "" {
			return fail(http.StatusUnauthorized, "not signed in")
		}

		claims := &accessClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.signingKey, nil
		})
		if err != nil {
			return fail(http.StatusUnauthorized, "access token expired")
		}

		s.mu.Lock()
		stale := claims.Gen < s.accessGen
		user := s.users[claims.Subject]
		var snapshot api.User
		if user != nil {
			snapshot = *user
		}
		s.mu.Unlock()

		if stale || user == nil {
			return fail(http.StatusUnauthorized, "access token expired")
		}
		c.Set("user", &snapshot)
		return next(c)
	}
}

// requireCSRF compares the X-XSRF-TOKEN header with the XSRF-TOKEN cookie on
// state-changing requests.
func (s *Server) requireCSRF(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}
		cookie, err := c.Cookie(mangabridge.DefaultCSRFCookieName)
		header := c.Request().Header.Get(mangabridge.DefaultCSRFHeaderName)
		if err != nil || cookie.Value == "" || header != cookie.Value {
			return fail(http.StatusForbidden, "invalid csrf token")
		}
		return next(c)
	}
}

func (s *Server) requireRole(roles ...api.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			for _, r := range roles {
				if user != nil && user.Role == r {
					return next(c)
				}
			}
			return fail(http.StatusForbidden, "insufficient role")
		}
	}
}

// hashPassword uses the minimum cost; the accounts are throwaway fixtures.
func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("hash password: %v", err))
	}
	return hash
}

// pathParam decodes a route parameter. Echo routes on RawPath when the request
// has one (e.g. an escaped "/"), and then hands the parameter back still escaped.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

func currentUser(c echo.Context) *api.User {
	u, _ := c.Get("user").(*api.User)
	return u
}

func (s *Server) userByEmailLocked(email string) *api.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}
