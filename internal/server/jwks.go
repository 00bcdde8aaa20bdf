package server

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cwkr/ledger-auth/internal/httputil"
	"github.com/go-jose/go-jose/v3"
)

type jwksHandler struct {
	keySet jose.JSONWebKeySet
}

func (j *jwksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	httputil.AllowCORS(w, r, []string{http.MethodGet, http.MethodOptions}, false)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var bytes, err = json.Marshal(j.keySet)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error marshaling: %s\n", err), http.StatusInternalServerError)
		return
	}
	httputil.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.Write(bytes)
}

func JwksHandler(publicKeys map[string]*rsa.PublicKey) http.Handler {
	var keySet jose.JSONWebKeySet
	for kid, publicKey := range publicKeys {
		keySet.Keys = append(keySet.Keys, jose.JSONWebKey{
			Key:       publicKey,
			KeyID:     kid,
			Use:       "sig",
			Algorithm: "RS256",
		})
	}
	return &jwksHandler{keySet: keySet}
}
