package middleware

import (
	"net/http"
	"strings"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/config"
)

// NewCORSMiddleware allows the comma separated origins of ALLOWED_ORIGIN.
// "*" allows any origin.
func NewCORSMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	var allowed []string
	for _, o := range strings.Split(cfg.AllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", "*")
					break
				}
				if o == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					break
				}
			}

			// Unlisted origins get no allow header, so browsers block them.
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
