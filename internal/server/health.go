package server

import (
	"log"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/cwkr/ledger-auth/internal/ledger"
	"github.com/cwkr/ledger-auth/internal/people"
	"github.com/cwkr/ledger-auth/internal/tokencache"
)

// Read probe for the ledger: the all-zero fingerprint is never issued, so
// a definite answer of any kind proves the registry is reachable.
const zeroFingerprint = "0x0000000000000000000000000000000000000000000000000000000000000000"

type healthHandler struct {
	peopleStore  people.Store
	tokenCache   tokencache.Store
	ledgerClient ledger.Client
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	var status = struct {
		Status string `json:"status"`
		People string `json:"people,omitempty"`
		Cache  string `json:"cache,omitempty"`
		Ledger string `json:"ledger,omitempty"`
	}{Status: "UP"}

	if err := h.peopleStore.Ping(); err != nil {
		status.Status = "DOWN"
		status.People = err.Error()
	}
	if err := h.tokenCache.Ping(); err != nil {
		status.Status = "DOWN"
		status.Cache = err.Error()
	}
	if _, err := h.ledgerClient.Validate(r.Context(), zeroFingerprint); err != nil {
		status.Status = "DOWN"
		status.Ledger = err.Error()
	}

	httputil.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if status.Status != "UP" {
		log.Printf("%s %s", r.Method, r.URL)
		log.Printf("!!! 503 Service Unavailable - %+v", status)
		WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	WriteJSON(w, http.StatusOK, status)
}

func HealthHandler(peopleStore people.Store, tokenCache tokencache.Store, ledgerClient ledger.Client) http.Handler {
	return &healthHandler{
		peopleStore:  peopleStore,
		tokenCache:   tokenCache,
		ledgerClient: ledgerClient,
	}
}
