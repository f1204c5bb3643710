package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SecretSize is the secret length in bytes (160 bits, RFC 4226 section 4).
const SecretSize = 20

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is the shared HMAC key of a credential.
//
// String and LogValue are redacted so a secret never ends up in logs by
// accident. Use Base32 to obtain the provisioning representation.
type Secret []byte

// GenerateSecret reads SecretSize bytes from crypto/rand.
func GenerateSecret() (Secret, error) {
	return generateSecret(rand.Reader)
}

func generateSecret(r io.Reader) (Secret, error) {
	s := make(Secret, SecretSize)
	if _, err := io.ReadFull(r, s); err != nil {
		return nil, fmt.Errorf("otp: read random secret: %w", err)
	}

	return s, nil
}

// ParseSecret decodes an unpadded (or padded) base32 secret.
func ParseSecret(encoded string) (Secret, error) {
	encoded = strings.TrimRight(strings.ToUpper(strings.TrimSpace(encoded)), "=")

	raw, err := b32NoPadding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("otp: decode secret: %w", err)
	}

	return Secret(raw), nil
}

// Base32 returns the unpadded base32 form used in otpauth URIs.
func (s Secret) Base32() string {
	return b32NoPadding.EncodeToString(s)
}

// Equal compares two secrets in constant time.
func (s Secret) Equal(other Secret) bool {
	return subtle.ConstantTimeCompare(s, other) == 1
}

// Clone returns an independent copy.
func (s Secret) Clone() Secret {
	if s == nil {
		return nil
	}

	out := make(Secret, len(s))
	copy(out, s)
	return out
}

// String implements fmt.Stringer.
func (Secret) String() string {
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer.
func (Secret) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}
