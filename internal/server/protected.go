package server

import (
	"log"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
)

type protectedHandler struct {
}

// The service layer proper: it runs only behind middleware.RequireToken,
// which has already resolved the subject into the request context.
func (h *protectedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var timing = httputil.NewTiming()
	var subject, _ = r.Context().Value("subject").(string)
	log.Printf("processing request for subject=%s", subject)

	WriteJSON(w, http.StatusOK, Response{
		Status:         "success",
		Message:        "Service logic executed successfully",
		Subject:        subject,
		ProcessingTime: timing.Total(),
	})
}

func ProtectedHandler() http.Handler {
	return &protectedHandler{}
}
