package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/oklog/ulid/v2"
)

const (
	ClaimIssuer        = "iss"
	ClaimSubject       = "sub"
	ClaimIssuedAtTime  = "iat"
	ClaimNotBeforeTime = "nbf"
	ClaimExpiryTime    = "exp"
	ClaimTokenID       = "jti"
)

var (
	ErrMissingKid          = errors.New("missing key id")
	ErrMatchingKeyNotFound = errors.New("matching key not found")
)

func NewTokenID(timestamp time.Time) string {
	id, _ := ulid.New(ulid.Timestamp(timestamp), rand.Reader)
	return id.String()
}

type VerifiedClaims struct {
	Subject string
	TokenID string
	Expiry  time.Time
}

type TokenCreator interface {
	GenerateToken(subject string) (string, time.Time, error)
	Verify(rawToken string) (*VerifiedClaims, error)
	TokenTTL() int64
	Issuer() string
}

type tokenCreator struct {
	signer     jose.Signer
	publicKeys map[string]*rsa.PublicKey
	issuer     string
	tokenTTL   int64
}

func NewTokenCreator(privateKey *rsa.PrivateKey, keyID, issuer string, tokenTTL int64, additionalPublicKeys map[string]*rsa.PublicKey) (TokenCreator, error) {
	var signer, err = jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: privateKey}, (&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", keyID))
	if err != nil {
		return nil, err
	}
	var publicKeys = map[string]*rsa.PublicKey{strings.ToLower(keyID): &privateKey.PublicKey}
	for kid, publicKey := range additionalPublicKeys {
		publicKeys[strings.ToLower(kid)] = publicKey
	}
	return &tokenCreator{
		signer:     signer,
		publicKeys: publicKeys,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}, nil
}

func (t tokenCreator) TokenTTL() int64 {
	return t.tokenTTL
}

func (t tokenCreator) Issuer() string {
	return t.issuer
}

func (t tokenCreator) GenerateToken(subject string) (string, time.Time, error) {
	var now = time.Now()
	var expiry = now.Add(time.Duration(t.tokenTTL) * time.Second)

	var claims = map[string]any{
		ClaimIssuer:        t.issuer,
		ClaimSubject:       subject,
		ClaimIssuedAtTime:  now.Unix(),
		ClaimNotBeforeTime: now.Unix(),
		ClaimExpiryTime:    expiry.Unix(),
		ClaimTokenID:       NewTokenID(now),
	}

	rawToken, err := jwt.Signed(t.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", time.Time{}, err
	}
	return rawToken, time.Unix(expiry.Unix(), 0), nil
}

// Verify performs the local validation phase only: parse, signature check
// against the key named by kid, and time-based claim validation with zero
// leeway. The ledger is never contacted here.
func (t tokenCreator) Verify(rawToken string) (*VerifiedClaims, error) {
	var token, err = jwt.ParseSigned(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	}
	if len(token.Headers) == 0 || token.Headers[0].KeyID == "" {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, ErrMissingKid)
	}
	var publicKey, found = t.publicKeys[strings.ToLower(token.Headers[0].KeyID)]
	if !found {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, ErrMatchingKeyNotFound)
	}
	var claims = jwt.Claims{}
	if err := token.Claims(publicKey, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	}
	err = claims.ValidateWithLeeway(jwt.Expected{
		Issuer: t.issuer,
		Time:   time.Now(),
	}, 0)
	if errors.Is(err, jwt.ErrExpired) {
		return nil, ErrTokenExpired
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	}
	if claims.Expiry == nil {
		return nil, fmt.Errorf("%w: missing expiry (exp)", ErrTokenInvalidSignature)
	}
	return &VerifiedClaims{
		Subject: claims.Subject,
		TokenID: claims.ID,
		Expiry:  claims.Expiry.Time(),
	}, nil
}
