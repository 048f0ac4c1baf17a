package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/shop-ledger/internal/auth"
	"github.com/josh-kwaku/shop-ledger/internal/handler"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

// Auth validates the bearer token and stores its claims on the request. The
// request logger gains the caller's username and scope.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			logger := logging.FromContext(ctx).With("username", claims.Username, "scope", claims.Scope)
			ctx = logging.WithLogger(ctx, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
