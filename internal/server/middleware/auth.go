package middleware

import (
	"encoding/json"
	"net/http"
)

// APIKeyHeader is the header clients present their key in.
const APIKeyHeader = "X-API-Key"

// publicPaths never require authentication. Exact path matching so a prefix
// cannot accidentally open up the whole API.
var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// APIKeyAuth validates the X-API-Key header against the configured key.
// An empty configured key disables authentication entirely (development
// mode). A missing key is 401, a wrong key 403.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(APIKeyHeader)
			if presented == "" {
				writeAuthError(w, http.StatusUnauthorized, "Missing API key. Please provide "+APIKeyHeader+" header.")
				return
			}
			if presented != apiKey {
				writeAuthError(w, http.StatusForbidden, "Invalid API key.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
