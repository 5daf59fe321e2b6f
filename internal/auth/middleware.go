package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

// Authenticate resolves the bearer token into a principal on the request
// context. Requests without a valid token get 401.
func Authenticate(tokens *Tokens, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			p, _, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrRevokedToken) {
					httpx.RespondError(w, httpx.ErrUnauthorized)
					return
				}
				httpx.Fail(w, logger, "verify token", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
		})
	}
}
