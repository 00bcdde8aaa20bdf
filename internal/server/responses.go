package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/tokens"
)

const (
	ErrorInvalidRequest        = "invalid_request"
	ErrorInvalidCredentials    = "invalid_credentials"
	ErrorUserExists            = "user_exists"
	ErrorTokenMissing          = "token_missing"
	ErrorInvalidToken          = "invalid_token"
	ErrorTokenExpired          = "token_expired"
	ErrorTokenRevoked          = "token_revoked"
	ErrorValidationUnavailable = "validation_unavailable"
	ErrorIssuanceFailed        = "issuance_failed"
	ErrorRevocationFailed      = "revocation_failed"
	ErrorInternal              = "internal_server_error"
)

// TokenService is the boundary exposed by the token lifecycle; the
// handlers consume nothing else of it.
type TokenService interface {
	Issue(ctx context.Context, subject string) (*tokens.Grant, error)
	Validate(ctx context.Context, rawToken string) (*tokens.Validation, error)
	Revoke(ctx context.Context, rawToken string) error
}

// Response carries the service result with its timing already attached;
// nothing intercepts the serializer afterwards.
type Response struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	Subject        string `json:"subject,omitempty"`
	ExpiresIn      int64  `json:"expires_in,omitempty"`
	ProcessingTime string `json:"processing_time,omitempty"`
}

type ErrorResponse struct {
	Status           string `json:"status"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, body any) {
	httputil.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	var bytes, _ = json.Marshal(body)
	w.Write(bytes)
}

func Error(w http.ResponseWriter, error string, description string, code int) {
	WriteJSON(w, code, ErrorResponse{"error", error, description})
}

// TokenError maps the token error taxonomy onto the HTTP boundary. Every
// branch denies access; a ledger outage answers 503 so callers can tell
// an outage from a rejection, but it never grants.
func TokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tokens.ErrTokenMissing):
		Error(w, ErrorTokenMissing, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, tokens.ErrTokenExpired):
		Error(w, ErrorTokenExpired, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, tokens.ErrTokenInvalidSignature):
		Error(w, ErrorInvalidToken, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, tokens.ErrTokenRevoked):
		Error(w, ErrorTokenRevoked, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, tokens.ErrValidationUnavailable):
		Error(w, ErrorValidationUnavailable, err.Error(), http.StatusServiceUnavailable)
	default:
		Error(w, ErrorInternal, err.Error(), http.StatusInternalServerError)
	}
}
