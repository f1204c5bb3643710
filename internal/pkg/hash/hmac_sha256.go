package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 signs controller payloads with a shared key. Digests are
// lowercase hex so they fit in a header.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(key string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(key)}
}

func (s *HMACSHA256) mac(payload []byte) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write(payload)
	return m.Sum(nil)
}

// Sign returns the hex digest of payload.
func (s *HMACSHA256) Sign(payload []byte) string {
	return hex.EncodeToString(s.mac(payload))
}

// Hash implements Hash.
func (s *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return []byte(s.Sign([]byte(plaintext))), nil
}

// Verify reports whether hashed is the hex digest of plaintext. Malformed hex
// never matches.
func (s *HMACSHA256) Verify(hashed, plaintext string) bool {
	got, err := hex.DecodeString(hashed)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac([]byte(plaintext)))
}
