package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		var err error
		testKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return testKey
}

func newTestCreator(t *testing.T, tokenTTL int64) TokenCreator {
	t.Helper()
	var creator, err = NewTokenCreator(testPrivateKey(t), "sigkey", "http://localhost:6080/", tokenTTL, nil)
	if err != nil {
		t.Fatalf("NewTokenCreator failed: %v", err)
	}
	return creator
}

func TestGenerateAndVerify(t *testing.T) {
	var creator = newTestCreator(t, 300)

	rawToken, expiresAt, err := creator.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if until := time.Until(expiresAt); until < 295*time.Second || until > 300*time.Second {
		t.Errorf("unexpected expiry %v from now", until)
	}

	claims, err := creator.Verify(rawToken)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %s, want alice", claims.Subject)
	}
	if claims.TokenID == "" {
		t.Error("token has no id (jti)")
	}
	if !claims.Expiry.Equal(expiresAt) {
		t.Errorf("claim expiry %v != granted expiry %v", claims.Expiry, expiresAt)
	}
}

func TestVerifyExpired(t *testing.T) {
	var creator = newTestCreator(t, -10)

	rawToken, _, err := creator.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := creator.Verify(rawToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	var creator = newTestCreator(t, 300)

	if _, err := creator.Verify("not.a.token"); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Verify = %v, want ErrTokenInvalidSignature", err)
	}
}

func TestVerifyForeignKey(t *testing.T) {
	var creator = newTestCreator(t, 300)

	foreignKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	foreignCreator, err := NewTokenCreator(foreignKey, "sigkey", "http://localhost:6080/", 300, nil)
	if err != nil {
		t.Fatal(err)
	}
	rawToken, _, err := foreignCreator.GenerateToken("mallory")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := creator.Verify(rawToken); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Verify = %v, want ErrTokenInvalidSignature", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	var creator = newTestCreator(t, 300)

	otherIssuer, err := NewTokenCreator(testPrivateKey(t), "sigkey", "http://elsewhere/", 300, nil)
	if err != nil {
		t.Fatal(err)
	}
	rawToken, _, err := otherIssuer.GenerateToken("alice")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := creator.Verify(rawToken); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Verify = %v, want ErrTokenInvalidSignature", err)
	}
}
