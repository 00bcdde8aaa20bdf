package server

import (
	"log"
	"net/http"
	"time"

	"github.com/cwkr/ledger-auth/internal/httputil"
)

type verifyHandler struct {
	tokenService TokenService
}

func (h *verifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	httputil.AllowCORS(w, r, []string{http.MethodOptions, http.MethodGet}, true)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var timing = httputil.NewTiming()

	timing.Start("validate")
	validation, err := h.tokenService.Validate(r.Context(), httputil.ExtractToken(r))
	timing.Stop("validate")
	if err != nil {
		TokenError(w, err)
		return
	}

	timing.Report(w)
	WriteJSON(w, http.StatusOK, Response{
		Status:         "success",
		Message:        "Token is valid",
		Subject:        validation.Subject,
		ExpiresIn:      int64(time.Until(validation.ExpiresAt).Seconds()),
		ProcessingTime: timing.Total(),
	})
}

func VerifyHandler(tokenService TokenService) http.Handler {
	return &verifyHandler{tokenService: tokenService}
}
