package people

import (
	"net/http"
	"time"
)

// Store is the credential-store collaborator: subject to password-hash
// lookup plus signup inserts, with cookie-session bookkeeping for the
// login flow. Token validity is never decided here.
type Store interface {
	Authenticate(userID, password string) (string, error)
	Insert(userID, password string) error
	Lookup(userID string) (*Person, error)
	IsSessionActive(r *http.Request, sessionName string) (string, bool)
	SaveSession(r *http.Request, w http.ResponseWriter, authTime time.Time, userID, sessionName string) error
	ClearSession(r *http.Request, w http.ResponseWriter, sessionName string) error
	Ping() error
}
