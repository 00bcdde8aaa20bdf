package server

import (
	"log"
	"net/http"
	"time"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/people"
	"github.com/cwkr/ledger-auth/internal/stringutil"
)

type loginHandler struct {
	peopleStore  people.Store
	tokenService TokenService
	sessionName  string
}

func (h *loginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	httputil.AllowCORS(w, r, []string{http.MethodOptions, http.MethodPost}, true)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var timing = httputil.NewTiming()
	var username, password = readCredentials(r)
	var realUserID string

	if stringutil.IsAnyEmpty(username, password) {
		// An active session can refresh its token without credentials.
		var sessionUserID, active = h.peopleStore.IsSessionActive(r, h.sessionName)
		if !active {
			Error(w, ErrorInvalidRequest, "username and password parameters are required", http.StatusBadRequest)
			return
		}
		realUserID = sessionUserID
	} else {
		timing.Start("store")
		var err error
		realUserID, err = h.peopleStore.Authenticate(username, password)
		timing.Stop("store")
		if err != nil {
			Error(w, ErrorInvalidCredentials, err.Error(), http.StatusUnauthorized)
			return
		}
	}
	log.Printf("user_id=%s", realUserID)

	timing.Start("issue")
	grant, err := h.tokenService.Issue(r.Context(), realUserID)
	timing.Stop("issue")
	if err != nil {
		Error(w, ErrorIssuanceFailed, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.peopleStore.SaveSession(r, w, time.Now(), realUserID, h.sessionName); err != nil {
		log.Printf("!!! session save failed: %v", err)
	}
	setTokenCookie(w, grant)
	timing.Report(w)
	WriteJSON(w, http.StatusOK, Response{
		Status:         "success",
		Message:        "Login successful",
		Subject:        grant.Subject,
		ExpiresIn:      int64(time.Until(grant.ExpiresAt).Seconds()),
		ProcessingTime: timing.Total(),
	})
}

func LoginHandler(peopleStore people.Store, tokenService TokenService, sessionName string) http.Handler {
	return &loginHandler{
		peopleStore:  peopleStore,
		tokenService: tokenService,
		sessionName:  sessionName,
	}
}
