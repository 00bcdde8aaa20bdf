package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/server"
	"github.com/cwkr/ledger-auth/internal/tokens"
)

type TokenValidator interface {
	Validate(ctx context.Context, rawToken string) (*tokens.Validation, error)
}

// RequireToken guards a handler with the full two-phase validation: local
// signature and expiry check, then the authoritative ledger lookup. The
// subject lands in the request context under "subject".
func RequireToken(next http.Handler, tokenValidator TokenValidator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rawToken = httputil.ExtractToken(r)
		if rawToken == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			server.Error(w, server.ErrorTokenMissing, "authentication required", http.StatusUnauthorized)
			return
		}
		var validation, err = tokenValidator.Validate(r.Context(), rawToken)
		if err != nil {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer error=\"invalid_token\", error_description=\"%s\"", err.Error()))
			server.TokenError(w, err)
			return
		}
		w.Header().Set("Server-Timing", fmt.Sprintf("ledger;dur=%.01f", float64(validation.LedgerLatency.Microseconds())/1000))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), "subject", validation.Subject)))
	})
}
