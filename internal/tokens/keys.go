package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func GeneratePrivateKey(keySize int) (*rsa.PrivateKey, []byte, error) {
	var rsaPrivateKey, err = rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, nil, err
	}

	asn1 := x509.MarshalPKCS1PrivateKey(rsaPrivateKey)
	bytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: asn1,
	})

	return rsaPrivateKey, bytes, nil
}

// LoadPublicKeys resolves additional verification keys given inline as PEM
// or as @file references relative to basePath. The kid is derived from the
// file name, or key1..keyN for inline keys.
func LoadPublicKeys(basePath string, keys []string) (map[string]*rsa.PublicKey, error) {
	var rsaPublicKeys = make(map[string]*rsa.PublicKey)

	for i, key := range keys {
		var (
			block *pem.Block
			kid   string
		)
		if strings.HasPrefix(key, "-----BEGIN ") {
			block, _ = pem.Decode([]byte(key))
			kid = fmt.Sprintf("key%d", i+1)
		} else if strings.HasPrefix(key, "@") {
			var filename = filepath.Join(basePath, key[1:])
			bytes, err := os.ReadFile(filename)
			if err != nil {
				return nil, err
			}
			block, _ = pem.Decode(bytes)
			kid = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		} else {
			return nil, errors.New("cannot load key")
		}

		var rsaPublicKey *rsa.PublicKey

		switch strings.TrimSpace(strings.ToLower(block.Type)) {
		case "rsa private key":
			rsaPrivateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			rsaPublicKey = &rsaPrivateKey.PublicKey
		case "rsa public key":
			var err error
			rsaPublicKey, err = x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
		case "public key":
			publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			var isRSA bool
			if rsaPublicKey, isRSA = publicKey.(*rsa.PublicKey); !isRSA {
				return nil, errors.New("only RSA keys are supported")
			}
		default:
			return nil, errors.New("unsupported key type: " + block.Type)
		}

		rsaPublicKeys[strings.ToLower(kid)] = rsaPublicKey
	}

	return rsaPublicKeys, nil
}
