package server

import (
	"log"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/people"
)

type logoutHandler struct {
	peopleStore  people.Store
	tokenService TokenService
	sessionName  string
}

func (h *logoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	httputil.AllowCORS(w, r, []string{http.MethodOptions, http.MethodPost}, true)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var timing = httputil.NewTiming()
	var rawToken = httputil.ExtractToken(r)
	if rawToken == "" {
		Error(w, ErrorTokenMissing, "no token presented", http.StatusUnauthorized)
		return
	}

	timing.Start("revoke")
	var err = h.tokenService.Revoke(r.Context(), rawToken)
	timing.Stop("revoke")
	if err != nil {
		// Cookie and cache entry stay so the revocation can be retried;
		// the sweeper picks the entry up after expiry at the latest.
		Error(w, ErrorRevocationFailed, err.Error(), http.StatusBadGateway)
		return
	}

	if err := h.peopleStore.ClearSession(r, w, h.sessionName); err != nil {
		log.Printf("!!! session clear failed: %v", err)
	}
	clearTokenCookie(w)
	timing.Report(w)
	WriteJSON(w, http.StatusOK, Response{
		Status:         "success",
		Message:        "Logged out successfully",
		ProcessingTime: timing.Total(),
	})
}

func LogoutHandler(peopleStore people.Store, tokenService TokenService, sessionName string) http.Handler {
	return &logoutHandler{
		peopleStore:  peopleStore,
		tokenService: tokenService,
		sessionName:  sessionName,
	}
}
