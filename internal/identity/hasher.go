package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Hasher derives one-way reporter identifiers. The raw sender id is
// never stored or logged; the derived value is deterministic so it can
// serve as a lookup key for duplicate scoping.
type Hasher struct {
	secret []byte
}

// NewHasher builds a hasher keyed with the configured secret salt.
func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC-SHA256 of the raw identifier.
func (h *Hasher) Hash(rawID string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(rawID))
	return hex.EncodeToString(mac.Sum(nil))
}
