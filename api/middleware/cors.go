package middleware

import (
	"net/http"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/go-chi/cors"
)

// CORS applies the configured origin policy. Credentials are allowed so the
// session cookie travels with storefront and back-office requests.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader, idempotencyReplayed, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
