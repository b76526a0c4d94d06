// Package testutil provides helpers for testing the HTTP behavior of
// generated-server lookalikes: guard middleware, the preview server, and
// anything else that answers with {"message": ...} bodies.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// RequestBuilder helps construct test HTTP requests with a fluent API.
type RequestBuilder struct {
	method  string
	path    string
	body    []byte
	headers map[string]string
}

// NewRequest creates a builder for GET /.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:  "GET",
		path:    "/",
		headers: make(map[string]string),
	}
}

// Method sets the HTTP method and path.
func (b *RequestBuilder) Method(method, path string) *RequestBuilder {
	b.method = strings.ToUpper(method)
	b.path = path
	return b
}

// GET sets the HTTP method to GET.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	return b.Method("GET", path)
}

// POST sets the HTTP method to POST.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	return b.Method("POST", path)
}

// WithJSON sets the request body to v encoded as JSON.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	b.body, _ = json.Marshal(v)
	b.headers["Content-Type"] = "application/json"
	return b
}

// WithBody sets a raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

// WithHeader sets a request header.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// WithAuth sets the Authorization header. An empty token leaves it unset.
func (b *RequestBuilder) WithAuth(token string) *RequestBuilder {
	if token == "" {
		delete(b.headers, "Authorization")
		return b
	}
	return b.WithHeader("Authorization", token)
}

// Build creates the HTTP request and a ResponseRecorder.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	var body io.Reader
	if len(b.body) > 0 {
		body = bytes.NewReader(b.body)
	}
	req := httptest.NewRequest(b.method, b.path, body)
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	return req, httptest.NewRecorder()
}

// Serve builds the request and runs it through h.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Errorf("expected status %d, got %d\nBody: %s", expectedStatus, w.Code, w.Body.String())
	}
}

// AssertMessage checks for a JSON {"message": expected} body.
func AssertMessage(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("expected Content-Type to contain application/json, got %q", ct)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v\nBody: %s", err, w.Body.String())
	}
	if body.Message != expected {
		t.Errorf("expected message %q, got %q", expected, body.Message)
	}
}

// AssertHeader checks that a response header has the expected value.
func AssertHeader(t *testing.T, w *httptest.ResponseRecorder, key, expectedValue string) {
	t.Helper()
	if actual := w.Header().Get(key); actual != expectedValue {
		t.Errorf("expected header %s=%q, got %q", key, expectedValue, actual)
	}
}
