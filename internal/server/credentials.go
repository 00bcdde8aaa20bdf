package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/tokens"
)

func readCredentials(r *http.Request) (string, string) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", ""
		}
		return strings.TrimSpace(body.Username), body.Password
	}
	return strings.TrimSpace(r.PostFormValue("username")), r.PostFormValue("password")
}

func setTokenCookie(w http.ResponseWriter, grant *tokens.Grant) {
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.TokenCookieName,
		Value:    grant.Token,
		Path:     "/",
		MaxAge:   int(time.Until(grant.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
