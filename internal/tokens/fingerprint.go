package tokens

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the ledger key for a serialized token: the
// 0x-prefixed lowercase hex Keccak-256 digest of its bytes. This matches
// the keying of the registry contract, so issuer, validator, revoker and
// sweeper all address the same entry for the same token.
func Fingerprint(rawToken string) string {
	var digest = sha3.NewLegacyKeccak256()
	digest.Write([]byte(rawToken))
	return "0x" + hex.EncodeToString(digest.Sum(nil))
}
