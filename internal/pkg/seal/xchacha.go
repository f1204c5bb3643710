package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Ciphertext layout: version byte, 24-byte nonce, sealed payload + tag.
const version byte = 1

var (
	// ErrNotConfigured indicates a missing key provider.
	ErrNotConfigured = errors.New("seal: not configured")
	// ErrEmptyPlaintext indicates an empty plaintext input.
	ErrEmptyPlaintext = errors.New("seal: plaintext is empty")
	// ErrMissingKey indicates a missing static key.
	ErrMissingKey = errors.New("seal: missing key")
	// ErrMalformed indicates a truncated or unknown-version ciphertext.
	ErrMalformed = errors.New("seal: malformed ciphertext")
	// ErrOpenFailed indicates authentication failure (wrong key, scope or tampering).
	ErrOpenFailed = errors.New("seal: open failed")
)

// XChaCha seals with XChaCha20-Poly1305 and random 192-bit nonces.
type XChaCha struct {
	keys KeyProvider
}

// NewXChaCha returns a Sealer backed by keys.
func NewXChaCha(keys KeyProvider) *XChaCha {
	return &XChaCha{keys: keys}
}

// Seal encrypts plaintext bound to scope.
func (x *XChaCha) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	aead, err := x.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	out[0] = version
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}

	return aead.Seal(out, out[1:], plaintext, associatedData(scope)), nil
}

// Open decrypts a ciphertext produced by Seal for the same scope.
func (x *XChaCha) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	aead, err := x.aead(scope)
	if err != nil {
		return nil, err
	}

	headerLen := 1 + aead.NonceSize()
	if len(ciphertext) < headerLen+aead.Overhead() || ciphertext[0] != version {
		return nil, ErrMalformed
	}

	plain, err := aead.Open(nil, ciphertext[1:headerLen], ciphertext[headerLen:], associatedData(scope))
	if err != nil {
		return nil, ErrOpenFailed
	}

	return plain, nil
}

func (x *XChaCha) aead(scope Scope) (cipher.AEAD, error) {
	if x == nil || x.keys == nil {
		return nil, ErrNotConfigured
	}

	key, err := x.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("seal: key provider: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("seal: key length %d: %w", len(key), err)
	}

	return aead, nil
}

func associatedData(s Scope) []byte {
	sum := sha256.Sum256([]byte("subject=" + s.Subject + "\npurpose=" + string(s.Purpose) + "\n"))
	return sum[:]
}
