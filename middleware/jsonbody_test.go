package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		limit       int64
		wantStatus  int
		wantBody    any
	}{
		{"object", "application/json", `{"a":1}`, 0, http.StatusOK, map[string]any{"a": float64(1)}},
		{"charset suffix", "application/json; charset=utf-8", `[true]`, 0, http.StatusOK, []any{true}},
		{"empty body", "application/json", "", 0, http.StatusOK, nil},
		{"not json content type", "text/plain", "{bad", 0, http.StatusOK, nil},
		{"malformed", "application/json", "{bad", 0, http.StatusBadRequest, nil},
		{"too large", "application/json", `"` + strings.Repeat("x", 64) + `"`, 16, http.StatusRequestEntityTooLarge, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			h := JSONBody(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = Body(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("Body() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
