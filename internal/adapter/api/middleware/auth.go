package middleware

import (
	"log/slog"
	"net/http"

	"github.com/user/storesync/internal/domain"
)

const apiKeyHeader = "X-API-Key"

// Auth rejects requests that do not carry a valid API key.
func Auth(keys domain.APIKeyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "auth_middleware")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				http.Error(w, "missing API key", http.StatusUnauthorized)
				return
			}

			valid, err := keys.IsValid(r.Context(), key)
			if err != nil {
				logger.Error("api key validation failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !valid {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
