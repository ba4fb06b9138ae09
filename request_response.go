package mangabridge

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// NormalizedRequest describes one outbound call. Endpoint is relative to the
// configured base origin, e.g. "/books".
type NormalizedRequest struct {
	Method   string
	Endpoint string
	Query    url.Values
	Headers  map[string]string
	Body     []byte
}

// clone returns a deep copy so defaults can be merged without touching the
// caller's record.
func (r *NormalizedRequest) clone() *NormalizedRequest {
	out := &NormalizedRequest{
		Method:   r.Method,
		Endpoint: r.Endpoint,
		Headers:  make(map[string]string, len(r.Headers)+2),
	}
	if r.Query != nil {
		out.Query = make(url.Values, len(r.Query))
		for k, vals := range r.Query {
			out.Query[k] = append([]string(nil), vals...)
		}
	}
	for k, v := range r.Headers {
		out.Headers[k] = v
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string // keys are lower-cased
	Data       []byte
}

// Pagination is the page metadata attached to list envelopes.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPage  int  `json:"totalPage"`
	TotalItems *int `json:"totalItems,omitempty"`
}

// CustomResponse is the envelope every backend endpoint answers with.
type CustomResponse struct {
	HTTPCode   int             `json:"httpCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// DecodeData unmarshals the envelope payload into v. An absent payload leaves v untouched.
func (r *CustomResponse) DecodeData(v interface{}) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}

// DecodeEnvelope parses a response body as a CustomResponse. Empty bodies yield an
// envelope carrying only the status code.
func DecodeEnvelope(resp *NormalizedResponse) (*CustomResponse, error) {
	env := &CustomResponse{HTTPCode: resp.StatusCode}
	if len(resp.Data) == 0 {
		env.Success = resp.StatusCode < 400
		return env, nil
	}
	if err := json.Unmarshal(resp.Data, env); err != nil {
		return nil, fmt.Errorf("decode envelope (status %d): %w", resp.StatusCode, err)
	}
	if env.HTTPCode == 0 {
		env.HTTPCode = resp.StatusCode
	}
	return env, nil
}
