// Package middleware holds the net/http middleware the preview server uses
// to reproduce the behavior of generated servers: CORS, JSON bodies,
// credential guards, and access logging.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins that may make cross-domain requests.
	// "*" allows every origin.
	// Default: ["*"]
	AllowOrigins []string

	// AllowMethods is the preflight Access-Control-Allow-Methods value.
	// Default: ["GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"]
	AllowMethods []string

	// AllowHeaders is the preflight Access-Control-Allow-Headers value.
	// When empty, the request's Access-Control-Request-Headers are echoed.
	AllowHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits it.
	MaxAge int
}

// DefaultCORSConfig matches the CORS behavior of generated servers.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
	}
}

// CORS returns middleware that sets CORS headers and answers preflight
// requests with 204. A nil cfg uses DefaultCORSConfig.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultCORSConfig()
	}
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = DefaultCORSConfig().AllowMethods
	}
	wildcard := contains(origins, "*")
	allowMethods := strings.Join(methods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard && cfg.AllowCredentials && origin != "":
				// "*" is not allowed together with credentials.
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && contains(origins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if cfg.AllowCredentials && h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", allowMethods)
			if allowHeaders != "" {
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
