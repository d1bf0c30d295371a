package middleware

import (
	"net/http"
	"strings"
)

// CacheControl adds cache headers to responses. API responses carry
// per-user data and must never be cached by intermediaries.
type CacheControl struct{}

// NewCacheControl creates a new cache control middleware.
func NewCacheControl() *CacheControl {
	return &CacheControl{}
}

// Apply adds cache headers based on the request path.
func (c *CacheControl) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/"):
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
		default:
			w.Header().Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}
