package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes is the body limit of generated servers.
const DefaultMaxBodyBytes = 100 << 10

type bodyKey struct{}

// Body returns the JSON body decoded by JSONBody, or nil.
func Body(r *http.Request) any {
	return r.Context().Value(bodyKey{})
}

// JSONBody decodes application/json request bodies into the request
// context. Malformed JSON is answered with 400 and bodies over limit bytes
// with 413. A limit of zero or less uses DefaultMaxBodyBytes.
func JSONBody(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			var body any
			err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&body)
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				WriteMessage(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
				return
			case err != nil && !errors.Is(err, io.EOF):
				WriteMessage(w, http.StatusBadRequest, "Invalid JSON body")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
		})
	}
}
