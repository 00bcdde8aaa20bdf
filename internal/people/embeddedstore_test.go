package people

import (
	"errors"
	"testing"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	return NewEmbeddedStore(sessions.NewCookieStore([]byte("test-secret")), nil, 3600)
}

func TestInsertAndAuthenticate(t *testing.T) {
	var store = newTestStore(t)

	if err := store.Insert("Alice@example.org", "s3cret"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	userID, err := store.Authenticate("alice@example.org", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if userID != "alice@example.org" {
		t.Errorf("userID = %s, want lowercased alice@example.org", userID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	var store = newTestStore(t)
	store.Insert("alice@example.org", "s3cret")

	if _, err := store.Authenticate("alice@example.org", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Authenticate = %v, want ErrAuthenticationFailed", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	var store = newTestStore(t)

	if _, err := store.Authenticate("nobody@example.org", "s3cret"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Authenticate = %v, want ErrAuthenticationFailed", err)
	}
}

func TestInsertDuplicate(t *testing.T) {
	var store = newTestStore(t)
	store.Insert("alice@example.org", "s3cret")

	if err := store.Insert("ALICE@example.org", "other"); !errors.Is(err, ErrPersonExists) {
		t.Errorf("Insert = %v, want ErrPersonExists", err)
	}
}

func TestLookup(t *testing.T) {
	var passwordHash, err = bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	var store = NewEmbeddedStore(sessions.NewCookieStore([]byte("test-secret")), map[string]AuthenticPerson{
		"alice@example.org": {
			Person:       Person{Email: "alice@example.org", GivenName: "Alice"},
			PasswordHash: string(passwordHash),
		},
	}, 3600)

	person, err := store.Lookup("alice@example.org")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if person.GivenName != "Alice" {
		t.Errorf("given name = %s, want Alice", person.GivenName)
	}

	if _, err := store.Lookup("nobody@example.org"); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("Lookup = %v, want ErrPersonNotFound", err)
	}
}
