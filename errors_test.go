package mangabridge

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestHTTPErrorMessage(t *testing.T) {
	req := &NormalizedRequest{Method: "DELETE", Endpoint: "/admin/user/u1"}

	withEnvelope := newHTTPError(req, &NormalizedResponse{
		StatusCode: 409,
		Data:       []byte(`{"httpCode":409,"success":false,"message":"user has open orders"}`),
	})
	if !strings.Contains(withEnvelope.Error(), "user has open orders") {
		t.Fatalf("message not surfaced: %s", withEnvelope.Error())
	}

	plain := newHTTPError(req, &NormalizedResponse{StatusCode: 502, Data: []byte("bad gateway")})
	if plain.Envelope != nil {
		t.Fatal("expected no envelope for non-JSON body")
	}
	if !strings.Contains(plain.Error(), "Bad Gateway") {
		t.Fatalf("expected status text, got %s", plain.Error())
	}
}

func TestErrorHelpers(t *testing.T) {
	auth := fmt.Errorf("list books: %w", &HTTPError{StatusCode: 403})
	if !IsAuthFailure(auth) || StatusCode(auth) != 403 {
		t.Fatalf("wrapped 403 not recognised: %v", auth)
	}
	if IsAuthFailure(&HTTPError{StatusCode: 500}) {
		t.Fatal("500 is not an auth failure")
	}

	cause := errors.New("i/o timeout")
	nerr := &NetworkError{Method: "GET", Endpoint: "/books", Err: cause}
	if !IsNetworkError(nerr) || !errors.Is(nerr, cause) || StatusCode(nerr) != 0 {
		t.Fatalf("network error helpers failed for %v", nerr)
	}
}
