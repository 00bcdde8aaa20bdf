package people

import (
	"fmt"
	"log"
	"net/url"

	"github.com/go-ldap/ldap/v3"
	"github.com/gorilla/sessions"
)

type ldapStore struct {
	embeddedStore
	ldapURL      string
	baseDN       string
	bindUser     string
	bindPassword string
	settings     *StoreSettings
}

// NewLdapStore wraps an LDAP directory as a read-only credential store.
// Bind credentials are taken from the userinfo part of the store URI.
func NewLdapStore(sessionStore sessions.Store, users map[string]AuthenticPerson, sessionTTL int64, settings *StoreSettings) (Store, error) {
	var ldapURL, bindUsername, bindPassword string
	if uri, err := url.Parse(settings.URI); err == nil {
		if uri.User != nil {
			bindUsername = uri.User.Username()
			bindPassword, _ = uri.User.Password()
		}
		ldapURL = fmt.Sprintf("%s://%s", uri.Scheme, uri.Host)
	} else {
		return nil, err
	}
	if users == nil {
		users = map[string]AuthenticPerson{}
	}

	return &ldapStore{
		embeddedStore: embeddedStore{
			sessionStore: sessionStore,
			users:        users,
			sessionTTL:   sessionTTL,
		},
		ldapURL:      ldapURL,
		baseDN:       settings.Parameters["base_dn"],
		bindUser:     bindUsername,
		bindPassword: bindPassword,
		settings:     settings,
	}, nil
}

func (p *ldapStore) connect() (*ldap.Conn, error) {
	var conn, err = ldap.DialURL(p.ldapURL)
	if err != nil {
		log.Printf("!!! ldap connection error: %v", err)
		return nil, err
	}
	if p.bindUser != "" {
		if err := conn.Bind(p.bindUser, p.bindPassword); err != nil {
			log.Printf("!!! ldap bind error: %v", err)
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (p *ldapStore) findUser(conn *ldap.Conn, userID string) (*ldap.Entry, error) {
	// (&(objectClass=person)(uid=%s))
	log.Printf("LDAP: %s; %%s = %s", p.settings.CredentialsQuery, userID)
	var search = ldap.NewSearchRequest(
		p.baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		fmt.Sprintf(p.settings.CredentialsQuery, ldap.EscapeFilter(userID)),
		[]string{"dn", "uid", "givenName", "sn", "mail"},
		nil,
	)
	results, err := conn.Search(search)
	if err != nil {
		return nil, err
	}
	if len(results.Entries) != 1 {
		return nil, ErrPersonNotFound
	}
	return results.Entries[0], nil
}

func (p *ldapStore) Authenticate(userID, password string) (string, error) {
	if realUserID, err := p.embeddedStore.Authenticate(userID, password); err == nil {
		return realUserID, nil
	}

	var conn, err = p.connect()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	entry, err := p.findUser(conn, userID)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	if err := conn.Bind(entry.DN, password); err != nil {
		log.Printf("!!! ldap user bind failed: %v", err)
		return "", ErrAuthenticationFailed
	}
	if uid := entry.GetAttributeValue("uid"); uid != "" {
		return uid, nil
	}
	return userID, nil
}

func (p *ldapStore) Insert(userID, password string) error {
	return ErrReadOnly
}

func (p *ldapStore) Lookup(userID string) (*Person, error) {
	if person, err := p.embeddedStore.Lookup(userID); err == nil {
		return person, nil
	}

	var conn, err = p.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entry, err := p.findUser(conn, userID)
	if err != nil {
		return nil, err
	}
	return &Person{
		GivenName:  entry.GetAttributeValue("givenName"),
		FamilyName: entry.GetAttributeValue("sn"),
		Email:      entry.GetAttributeValue("mail"),
	}, nil
}

func (p *ldapStore) Ping() error {
	var conn, err = p.connect()
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}
