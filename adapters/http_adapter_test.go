package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	mangabridge "github.com/opengovern/manga-bridge"
)

type seen struct {
	method, path, escapedPath, rawQuery string
	header                              http.Header
	body                                string
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, chan seen) {
	t.Helper()
	ch := make(chan seen, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ch <- seen{r.Method, r.URL.Path, r.URL.EscapedPath(), r.URL.RawQuery, r.Header.Clone(), string(data)}
		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"httpCode":200,"success":true,"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func newAdapter(t *testing.T, baseURL string, timeout time.Duration) *HTTPAdapter {
	t.Helper()
	a, err := NewHTTPAdapter(&mangabridge.ClientConfig{BaseURL: baseURL, Timeout: timeout})
	if err != nil {
		t.Fatalf("NewHTTPAdapter: %v", err)
	}
	return a
}

func TestNewHTTPAdapter_RejectsRelativeBaseURL(t *testing.T) {
	if _, err := NewHTTPAdapter(&mangabridge.ClientConfig{BaseURL: "/api"}); err == nil {
		t.Fatal("expected error for relative base URL")
	}
}

func TestExecuteRequest_BuildsURLAndDefaults(t *testing.T) {
	srv, ch := newRecordingServer(t, nil)
	a := newAdapter(t, srv.URL+"/v1/", 0)

	resp, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{
		Method:   http.MethodGet,
		Endpoint: "books",
		Query:    url.Values{"categories[]": {"action", "fantasy"}, "page": {"2"}},
	})
	if err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("response headers not lowercased: %v", resp.Headers)
	}

	got := <-ch
	if got.path != "/v1/books" {
		t.Fatalf("path = %q, want /v1/books", got.path)
	}
	q, _ := url.ParseQuery(got.rawQuery)
	if len(q["categories[]"]) != 2 || q.Get("page") != "2" {
		t.Fatalf("query = %q", got.rawQuery)
	}
	if ct := got.header.Get("Content-Type"); ct != mangabridge.ContentTypeJSON {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestExecuteRequest_EscapedEndpointSentOnce(t *testing.T) {
	srv, ch := newRecordingServer(t, nil)
	a := newAdapter(t, srv.URL+"/v1", 0)

	tests := []struct {
		endpoint    string
		wantPath    string
		wantEscaped string
	}{
		{"/books/one%20piece", "/v1/books/one piece", "/v1/books/one%20piece"},
		{"/books/a%2Fb", "/v1/books/a/b", "/v1/books/a%2Fb"},
		{"/books/100%25", "/v1/books/100%", "/v1/books/100%25"},
		{"/books/caf%C3%A9", "/v1/books/café", "/v1/books/caf%C3%A9"},
		{"/books/night-garden", "/v1/books/night-garden", "/v1/books/night-garden"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if _, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: http.MethodGet, Endpoint: tt.endpoint}); err != nil {
				t.Fatalf("ExecuteRequest: %v", err)
			}
			got := <-ch
			if got.path != tt.wantPath || got.escapedPath != tt.wantEscaped {
				t.Fatalf("server saw %q (%q), want %q (%q)", got.path, got.escapedPath, tt.wantPath, tt.wantEscaped)
			}
		})
	}
}

func TestExecuteRequest_RejectsMalformedEscape(t *testing.T) {
	a := newAdapter(t, "http://localhost:3000", 0)
	if _, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/books/%zz"}); err == nil {
		t.Fatal("expected error for a malformed escape")
	}
}

func TestExecuteRequest_KeepsExplicitContentType(t *testing.T) {
	srv, ch := newRecordingServer(t, nil)
	a := newAdapter(t, srv.URL, 0)

	_, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{
		Method:   http.MethodPut,
		Endpoint: "/admin/user/u-1",
		Headers:  map[string]string{"Content-Type": "multipart/form-data; boundary=x"},
		Body:     []byte("--x--"),
	})
	if err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}
	got := <-ch
	if got.header.Get("Content-Type") != "multipart/form-data; boundary=x" {
		t.Fatalf("Content-Type overwritten: %q", got.header.Get("Content-Type"))
	}
	if got.body != "--x--" {
		t.Fatalf("body = %q", got.body)
	}
}

func TestExecuteRequest_CSRFHeaderOnStateChangingMethods(t *testing.T) {
	srv, ch := newRecordingServer(t, nil)
	a := newAdapter(t, srv.URL, 0)
	a.SetCookies(&http.Cookie{Name: mangabridge.DefaultCSRFCookieName, Value: "csrf-123", Path: "/"})

	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, ""},
		{http.MethodPost, "csrf-123"},
		{http.MethodPut, "csrf-123"},
		{http.MethodPatch, "csrf-123"},
		{http.MethodDelete, "csrf-123"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if _, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: tt.method, Endpoint: "/books"}); err != nil {
				t.Fatalf("ExecuteRequest: %v", err)
			}
			got := <-ch
			if h := got.header.Get(mangabridge.DefaultCSRFHeaderName); h != tt.want {
				t.Fatalf("%s %s = %q, want %q", tt.method, mangabridge.DefaultCSRFHeaderName, h, tt.want)
			}
		})
	}
}

func TestExecuteRequest_NoCSRFHeaderWithoutCookie(t *testing.T) {
	srv, ch := newRecordingServer(t, nil)
	a := newAdapter(t, srv.URL, 0)

	if _, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: http.MethodPost, Endpoint: "/books"}); err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}
	if h := (<-ch).header.Get(mangabridge.DefaultCSRFHeaderName); h != "" {
		t.Fatalf("unexpected CSRF header %q", h)
	}
}

func TestExecuteRequest_CookieJarRoundTrip(t *testing.T) {
	srv, ch := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-1", Path: "/", HttpOnly: true})
		}
		w.WriteHeader(http.StatusOK)
	})
	a := newAdapter(t, srv.URL, 0)
	ctx := context.Background()

	if _, err := a.ExecuteRequest(ctx, &mangabridge.NormalizedRequest{Method: http.MethodPost, Endpoint: "/auth/login"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	<-ch
	if c, ok := a.Cookie("access_token"); !ok || c.Value != "tok-1" {
		t.Fatalf("cookie not stored in jar: %v %v", c, ok)
	}

	if _, err := a.ExecuteRequest(ctx, &mangabridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/auth/me"}); err != nil {
		t.Fatalf("me: %v", err)
	}
	got := <-ch
	if !strings.Contains(got.header.Get("Cookie"), "access_token=tok-1") {
		t.Fatalf("cookie not sent back: %q", got.header.Get("Cookie"))
	}
}

func TestExecuteRequest_ErrorStatusIsAResponse(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"httpCode":401,"success":false,"message":"expired"}`))
	})
	a := newAdapter(t, srv.URL, 0)

	resp, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/books"})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(string(resp.Data), "expired") {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, resp.Data)
	}
}

func TestExecuteRequest_Timeout(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	a := newAdapter(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := a.ExecuteRequest(context.Background(), &mangabridge.NormalizedRequest{Method: http.MethodGet, Endpoint: "/slow"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}
