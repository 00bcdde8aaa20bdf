package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/people"
	"github.com/cwkr/ledger-auth/internal/stringutil"
)

type signupHandler struct {
	peopleStore  people.Store
	tokenService TokenService
	sessionName  string
}

// The user record and the ledger registration are deliberately not
// transactional: if issuance fails after the insert, the record stays and
// the caller simply logs in once the ledger is back.
func (h *signupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	httputil.AllowCORS(w, r, []string{http.MethodOptions, http.MethodPost}, true)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var timing = httputil.NewTiming()
	var username, password = readCredentials(r)

	if stringutil.IsAnyEmpty(username, password) {
		Error(w, ErrorInvalidRequest, "username and password parameters are required", http.StatusBadRequest)
		return
	}

	timing.Start("store")
	var err = h.peopleStore.Insert(username, password)
	timing.Stop("store")
	if errors.Is(err, people.ErrPersonExists) {
		Error(w, ErrorUserExists, "user already exists", http.StatusBadRequest)
		return
	} else if errors.Is(err, people.ErrReadOnly) {
		Error(w, ErrorInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	} else if err != nil {
		Error(w, ErrorInternal, err.Error(), http.StatusInternalServerError)
		return
	}

	timing.Start("issue")
	grant, err := h.tokenService.Issue(r.Context(), username)
	timing.Stop("issue")
	if err != nil {
		Error(w, ErrorIssuanceFailed, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.peopleStore.SaveSession(r, w, time.Now(), username, h.sessionName); err != nil {
		log.Printf("!!! session save failed: %v", err)
	}
	setTokenCookie(w, grant)
	timing.Report(w)
	WriteJSON(w, http.StatusOK, Response{
		Status:         "success",
		Message:        "User registered successfully",
		Subject:        grant.Subject,
		ExpiresIn:      int64(time.Until(grant.ExpiresAt).Seconds()),
		ProcessingTime: timing.Total(),
	})
}

func SignupHandler(peopleStore people.Store, tokenService TokenService, sessionName string) http.Handler {
	return &signupHandler{
		peopleStore:  peopleStore,
		tokenService: tokenService,
		sessionName:  sessionName,
	}
}
