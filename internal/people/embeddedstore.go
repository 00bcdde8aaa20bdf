package people

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

type embeddedStore struct {
	sessionStore sessions.Store
	sessionTTL   int64
	mutex        sync.RWMutex
	users        map[string]AuthenticPerson
}

func NewEmbeddedStore(sessionStore sessions.Store, users map[string]AuthenticPerson, sessionTTL int64) Store {
	if users == nil {
		users = map[string]AuthenticPerson{}
	}
	return &embeddedStore{
		sessionStore: sessionStore,
		users:        users,
		sessionTTL:   sessionTTL,
	}
}

func (e *embeddedStore) Authenticate(userID, password string) (string, error) {
	var lowercaseUserID = strings.ToLower(userID)
	e.mutex.RLock()
	var authenticPerson, foundUser = e.users[lowercaseUserID]
	e.mutex.RUnlock()

	if foundUser {
		if err := bcrypt.CompareHashAndPassword([]byte(authenticPerson.PasswordHash), []byte(password)); err != nil {
			log.Printf("!!! password comparison failed: %v", err)
		} else {
			return lowercaseUserID, nil
		}
	}

	return "", ErrAuthenticationFailed
}

func (e *embeddedStore) Insert(userID, password string) error {
	var lowercaseUserID = strings.ToLower(userID)
	var passwordHash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	if _, found := e.users[lowercaseUserID]; found {
		return ErrPersonExists
	}
	e.users[lowercaseUserID] = AuthenticPerson{PasswordHash: string(passwordHash)}
	return nil
}

func (e *embeddedStore) Lookup(userID string) (*Person, error) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	if authenticPerson, found := e.users[strings.ToLower(userID)]; found {
		return &authenticPerson.Person, nil
	}
	return nil, ErrPersonNotFound
}

func (e *embeddedStore) IsSessionActive(r *http.Request, sessionName string) (string, bool) {
	var session, _ = e.sessionStore.Get(r, sessionName)

	var uid, sct = session.Values["uid"], session.Values["sct"]

	if uid != nil && sct != nil && time.Unix(sct.(int64), 0).Add(time.Duration(e.sessionTTL)*time.Second).After(time.Now()) {
		return uid.(string), true
	}

	return "", false
}

func (e *embeddedStore) SaveSession(r *http.Request, w http.ResponseWriter, authTime time.Time, userID, sessionName string) error {
	var session, _ = e.sessionStore.Get(r, sessionName)
	session.Values["uid"] = userID
	session.Values["sct"] = authTime.Unix()
	return session.Save(r, w)
}

func (e *embeddedStore) ClearSession(r *http.Request, w http.ResponseWriter, sessionName string) error {
	var session, _ = e.sessionStore.Get(r, sessionName)
	if session.IsNew {
		return nil
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (e *embeddedStore) Ping() error {
	return nil
}
