package handler

import (
	"net/http"

	"github.com/josh-kwaku/shop-ledger/internal/auth"
)

// claimsForScope returns the caller's claims when the {scope} path value is
// the scope their token was issued for. Other scopes read as not found.
func claimsForScope(r *http.Request) (*auth.Claims, *AppError) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return nil, ErrMissingToken
	}

	if scope := r.PathValue("scope"); scope == "" || scope != claims.Scope {
		return nil, ErrResourceNotFound
	}

	return claims, nil
}
