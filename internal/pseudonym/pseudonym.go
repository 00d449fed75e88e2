// Package pseudonym derives stable, irreversible storage keys from email
// addresses. The derived value is used solely as a storage key, never as an
// authorization token.
package pseudonym

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// Hasher computes a deterministic keyed 256-bit digest of an email address.
// Two calls with the same email under the same secret always produce the
// same 64-character lowercase hex string.
type Hasher struct {
	secret []byte
}

// NewHasher builds a Hasher from the deployment secret. An empty secret is a
// configuration error, not a runtime one.
func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, errors.New("pseudonym: secret is required")
	}
	// blake2b keys are capped at 64 bytes.
	key := []byte(secret)
	if len(key) > 64 {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Hasher{secret: key}, nil
}

// Hash returns the keyed BLAKE2b-256 digest of the email as fixed-length hex.
func (h *Hasher) Hash(email string) string {
	mac, _ := blake2b.New256(h.secret)
	mac.Write([]byte(email))
	return hex.EncodeToString(mac.Sum(nil))
}
