package mangabridge

import (
	"net/url"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	body := `{"httpCode":200,"success":true,"message":"ok","data":[{"id":"b1"},{"id":"b2"}],
		"pagination":{"page":2,"limit":10,"totalPage":5,"totalItems":48}}`
	env, err := DecodeEnvelope(&NormalizedResponse{StatusCode: 200, Data: []byte(body)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success || env.Message != "ok" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Pagination == nil || env.Pagination.Page != 2 || env.Pagination.TotalPage != 5 || *env.Pagination.TotalItems != 48 {
		t.Fatalf("unexpected pagination: %+v", env.Pagination)
	}

	var books []struct {
		ID string `json:"id"`
	}
	if err := env.DecodeData(&books); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(books) != 2 || books[1].ID != "b2" {
		t.Fatalf("unexpected data: %+v", books)
	}
}

func TestDecodeEnvelope_EdgeCases(t *testing.T) {
	env, err := DecodeEnvelope(&NormalizedResponse{StatusCode: 204})
	if err != nil || env.HTTPCode != 204 || !env.Success {
		t.Fatalf("empty body: %+v %v", env, err)
	}

	env, err = DecodeEnvelope(&NormalizedResponse{StatusCode: 201, Data: []byte(`{"success":true,"message":"created"}`)})
	if err != nil || env.HTTPCode != 201 {
		t.Fatalf("missing httpCode should fall back to status: %+v %v", env, err)
	}

	var v map[string]string
	if err := env.DecodeData(&v); err != nil || v != nil {
		t.Fatalf("absent data should leave target untouched: %v %v", v, err)
	}

	if _, err := DecodeEnvelope(&NormalizedResponse{StatusCode: 502, Data: []byte("<html>bad gateway</html>")}); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestNormalizedRequestClone(t *testing.T) {
	orig := &NormalizedRequest{
		Method:   "GET",
		Endpoint: "/books",
		Query:    url.Values{"categories": {"action", "drama"}},
		Headers:  map[string]string{"Accept": "application/json"},
		Body:     []byte("{}"),
	}
	cp := orig.clone()
	cp.Query.Add("categories", "horror")
	cp.Headers["X-Extra"] = "1"
	cp.Body[0] = '['

	if len(orig.Query["categories"]) != 2 || orig.Headers["X-Extra"] != "" || orig.Body[0] != '{' {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}
