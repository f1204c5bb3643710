// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt verifies API client secrets from configuration. HMACSHA256 signs
// payloads sent to the door controller so it can authenticate the sender.
package hash

// Hash hashes and verifies plaintext values.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
