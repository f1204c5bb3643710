// Package seal encrypts credential secrets before they leave the process
// (for example on the message broker), binding each ciphertext to the
// credential it belongs to.
package seal

// Purpose identifies what a ciphertext protects.
type Purpose string

// PurposeCredentialSync scopes ciphertexts to credential sync events.
const PurposeCredentialSync Purpose = "credential_sync"

// Scope binds a ciphertext to a subject; it is authenticated as associated data.
type Scope struct {
	Subject string
	Purpose Purpose
}

// Sealer encrypts and decrypts secrets for a scope.
type Sealer interface {
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider provides raw 32-byte keys.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingKey
	}

	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}
