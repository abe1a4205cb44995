// -----------------------------------------------------------------------------
// API Testing Helpers
// -----------------------------------------------------------------------------
// A request builder that drives an http.Handler in-process and asserts on
// the JSON envelope of the response.
//
// Usage:
//
//	apitest.NewRequest(http.MethodPost, "/api/purchases").
//	    WithJSON(input).
//	    Send(t, handler).
//	    AssertStatus(http.StatusCreated).
//	    Decode(&purchase)
// -----------------------------------------------------------------------------

package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the response envelope with Data left undecoded.
type Envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Fields  map[string][]string `json:"fields"`
	Meta    map[string]int      `json:"meta"`
}

// Request is a test request builder.
type Request struct {
	method  string
	url     string
	body    io.Reader
	headers map[string]string
}

func NewRequest(method, url string) *Request {
	return &Request{
		method:  method,
		url:     url,
		headers: make(map[string]string),
	}
}

// WithJSON sets data as the JSON body.
func (r *Request) WithJSON(data interface{}) *Request {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	r.body = bytes.NewReader(raw)
	r.headers["Content-Type"] = "application/json"
	return r
}

// WithBody sets a raw body.
func (r *Request) WithBody(contentType string, body io.Reader) *Request {
	r.body = body
	if contentType != "" {
		r.headers["Content-Type"] = contentType
	}
	return r
}

// WithToken adds a bearer token. An empty token is ignored.
func (r *Request) WithToken(token string) *Request {
	if token != "" {
		r.headers["Authorization"] = "Bearer " + token
	}
	return r
}

func (r *Request) WithHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Send serves the request with handler.
func (r *Request) Send(t *testing.T, handler http.Handler) *Response {
	t.Helper()
	req := httptest.NewRequest(r.method, r.url, r.body)
	for key, value := range r.headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return &Response{Recorder: rec, t: t}
}

// Response wraps the recorded response.
type Response struct {
	Recorder *httptest.ResponseRecorder
	t        *testing.T
	envelope *Envelope
}

// AssertStatus fails the test immediately on a different status.
func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()
	require.Equal(r.t, expected, r.Recorder.Code, r.Recorder.Body.String())
	return r
}

// AssertCode checks the error code of a failure envelope.
func (r *Response) AssertCode(expected string) *Response {
	r.t.Helper()
	assert.Equal(r.t, expected, r.Envelope().Code)
	return r
}

// AssertCount checks meta.count of a collection response.
func (r *Response) AssertCount(expected int) *Response {
	r.t.Helper()
	assert.Equal(r.t, expected, r.Envelope().Meta["count"])
	return r
}

// Envelope decodes the JSON envelope once.
func (r *Response) Envelope() *Envelope {
	r.t.Helper()
	if r.envelope == nil {
		contentType := r.Recorder.Header().Get("Content-Type")
		require.True(r.t, strings.Contains(contentType, "application/json"), "expected JSON response, got %q", contentType)

		var env Envelope
		require.NoError(r.t, json.Unmarshal(r.Recorder.Body.Bytes(), &env))
		r.envelope = &env
	}
	return r.envelope
}

// Decode unmarshals the data member into dest.
func (r *Response) Decode(dest interface{}) *Response {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Envelope().Data, dest))
	return r
}

// Body returns the raw body.
func (r *Response) Body() string {
	return r.Recorder.Body.String()
}
