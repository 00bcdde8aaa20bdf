package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwkr/ledger-auth/internal/fileutil"
	"github.com/cwkr/ledger-auth/internal/ledger"
	"github.com/cwkr/ledger-auth/internal/people"
	"github.com/cwkr/ledger-auth/internal/server"
	"github.com/cwkr/ledger-auth/internal/tokencache"
	"github.com/cwkr/ledger-auth/internal/tokens"
	"github.com/cwkr/ledger-auth/middleware"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/hjson/hjson-go/v4"
)

var (
	settings     *server.Settings
	tokenService *tokens.Service
)

func main() {
	var err error
	var configFilename string
	var saveConfig bool

	log.SetOutput(os.Stdout)

	flag.StringVar(&configFilename, "config", "", "config file name")
	flag.BoolVar(&saveConfig, "save", false, "save config and exit")
	flag.Parse()

	configFilename = fileutil.ProbeSettingsFilename(configFilename)

	// Set defaults
	settings = server.NewDefaultSettings()

	configBytes, err := os.ReadFile(configFilename)
	if err == nil {
		err = hjson.Unmarshal(configBytes, settings)
		if err != nil {
			panic(err)
		}
	}

	err = settings.LoadKeys(filepath.Dir(configFilename), saveConfig)
	if err != nil {
		panic(err)
	}

	if saveConfig {
		log.Printf("Saving config file %s", configFilename)
		configJson, _ := json.MarshalIndent(settings, "", "  ")
		if err := os.WriteFile(configFilename, configJson, 0644); err != nil {
			panic(err)
		}
		os.Exit(0)
	}

	var sessionStore = sessions.NewCookieStore([]byte(settings.SessionSecret))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.MaxAge = 0

	var dbs = map[string]*sql.DB{}
	var peopleStore people.Store
	if settings.PeopleStore != nil {
		if strings.HasPrefix(settings.PeopleStore.URI, "postgresql:") {
			if peopleStore, err = people.NewSqlStore(sessionStore, settings.Users, int64(settings.SessionTTL), dbs, settings.PeopleStore); err != nil {
				panic(err)
			}
		} else if strings.HasPrefix(settings.PeopleStore.URI, "ldap:") || strings.HasPrefix(settings.PeopleStore.URI, "ldaps:") {
			if peopleStore, err = people.NewLdapStore(sessionStore, settings.Users, int64(settings.SessionTTL), settings.PeopleStore); err != nil {
				panic(err)
			}
		} else {
			panic(errors.New("unsupported or empty store uri: " + settings.PeopleStore.URI))
		}
	} else {
		peopleStore = people.NewEmbeddedStore(sessionStore, settings.Users, int64(settings.SessionTTL))
	}

	var tokenCache tokencache.Store
	if strings.HasPrefix(settings.TokenCacheURI, "redis:") || strings.HasPrefix(settings.TokenCacheURI, "rediss:") {
		if tokenCache, err = tokencache.NewRedisStore(settings.TokenCacheURI); err != nil {
			panic(err)
		}
	} else {
		tokenCache = tokencache.NewMemStore()
	}

	var ledgerClient = ledger.NewHTTPClient(settings.Ledger)

	tokenCreator, err := tokens.NewTokenCreator(
		settings.PrivateKey(),
		settings.KeyID(),
		settings.Issuer,
		int64(settings.TokenTTL),
		settings.AdditionalPublicKeys(),
	)
	if err != nil {
		panic(err)
	}

	tokenService = tokens.NewService(tokenCreator, ledgerClient, tokenCache)

	var sweeper = tokens.NewSweeper(tokenCache, ledgerClient, time.Duration(settings.SweepInterval)*time.Second)
	var sweeperCtx, stopSweeper = context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweeperCtx)

	var router = mux.NewRouter()

	router.Handle("/signup", server.SignupHandler(peopleStore, tokenService, settings.SessionName)).
		Methods(http.MethodOptions, http.MethodPost)
	router.Handle("/login", server.LoginHandler(peopleStore, tokenService, settings.SessionName)).
		Methods(http.MethodOptions, http.MethodPost)
	router.Handle("/logout", server.LogoutHandler(peopleStore, tokenService, settings.SessionName)).
		Methods(http.MethodOptions, http.MethodPost)
	router.Handle("/verify-token", server.VerifyHandler(tokenService)).
		Methods(http.MethodOptions, http.MethodGet)
	router.Handle("/protected", middleware.RequireToken(server.ProtectedHandler(), tokenService)).
		Methods(http.MethodGet)
	router.Handle("/jwks", server.JwksHandler(settings.AllKeys())).
		Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/health", server.HealthHandler(peopleStore, tokenCache, ledgerClient)).
		Methods(http.MethodGet)

	log.Printf("Listening on http://localhost:%d/", settings.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", settings.Port), router)
	if err != nil {
		panic(err)
	}
}
