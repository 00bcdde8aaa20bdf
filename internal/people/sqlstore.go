package people

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/blockloop/scan/v2"
	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type sqlStore struct {
	embeddedStore
	dbconn   *sql.DB
	settings *StoreSettings
}

func NewSqlStore(sessionStore sessions.Store, users map[string]AuthenticPerson, sessionTTL int64, dbs map[string]*sql.DB, settings *StoreSettings) (Store, error) {
	if dbs[settings.URI] == nil {
		dbconn, err := sql.Open("postgres", settings.URI)
		if err != nil {
			return nil, err
		}
		dbs[settings.URI] = dbconn
	}
	if users == nil {
		users = map[string]AuthenticPerson{}
	}
	return &sqlStore{
		embeddedStore: embeddedStore{
			sessionStore: sessionStore,
			users:        users,
			sessionTTL:   sessionTTL,
		},
		dbconn:   dbs[settings.URI],
		settings: settings,
	}, nil
}

func (p *sqlStore) Authenticate(userID, password string) (string, error) {
	var realUserID, err = p.embeddedStore.Authenticate(userID, password)
	if err == nil {
		return realUserID, nil
	}

	// SELECT user_id, password_hash FROM people WHERE lower(user_id) = lower($1)
	log.Printf("SQL: %s; -- %s", p.settings.CredentialsQuery, userID)
	var row = p.dbconn.QueryRow(p.settings.CredentialsQuery, userID)
	var passwordHash string
	if err := row.Scan(&realUserID, &passwordHash); err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
			log.Printf("!!! password comparison failed: %v", err)
		} else {
			return realUserID, nil
		}
	} else {
		log.Printf("!!! Query for person failed: %v", err)
		if err != sql.ErrNoRows {
			return "", err
		}
	}

	return "", ErrAuthenticationFailed
}

func (p *sqlStore) Insert(userID, password string) error {
	var passwordHash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// INSERT INTO people (user_id, password_hash) VALUES (lower($1), $2) ON CONFLICT (user_id) DO NOTHING
	log.Printf("SQL: %s; -- %s", p.settings.Insert, userID)
	result, err := p.dbconn.Exec(p.settings.Insert, userID, string(passwordHash))
	if err != nil {
		return err
	}
	if inserted, err := result.RowsAffected(); err == nil && inserted == 0 {
		return ErrPersonExists
	}
	return nil
}

func (p *sqlStore) Lookup(userID string) (*Person, error) {
	var person, err = p.embeddedStore.Lookup(userID)
	if err == nil {
		return person, nil
	}
	if p.settings.DetailsQuery == "" {
		return nil, ErrPersonNotFound
	}

	var details Person

	// SELECT COALESCE(given_name, '') given_name, COALESCE(family_name, '') family_name,
	// COALESCE(email, '') email FROM people WHERE lower(user_id) = lower($1)
	log.Printf("SQL: %s; -- %s", p.settings.DetailsQuery, userID)
	if rows, err := p.dbconn.Query(p.settings.DetailsQuery, userID); err == nil {
		if err := scan.RowStrict(&details, rows); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrPersonNotFound
			}
			return nil, err
		}
	} else {
		return nil, err
	}
	return &details, nil
}

func (p *sqlStore) Ping() error {
	var done = make(chan error, 1)
	go func() {
		done <- p.dbconn.Ping()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return errors.New("database ping timed out")
	}
}
