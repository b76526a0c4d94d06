package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteMessage writes {"message": message} with the given status.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Message returns a handler that always responds 200 with message.
func Message(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteMessage(w, http.StatusOK, message)
	}
}
