package otp

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	// Period is the TOTP time step in seconds.
	Period = 30
	// Digits is the code length.
	Digits = 6
	// DefaultWindow is the number of neighbouring steps accepted on each side.
	DefaultWindow = 1
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// GenerateCode computes the code for the time step containing at.
	GenerateCode(secret Secret, at time.Time) (string, error)
	// Validate reports whether code matches any step within the window around at.
	Validate(secret Secret, code string, at time.Time) bool
}

// TOTP implements OTP with HMAC-SHA1, 6 digits and a 30 second period.
type TOTP struct {
	window int64
}

// NewTOTP returns a TOTP engine accepting window steps on each side of the
// current step. A negative window falls back to DefaultWindow.
func NewTOTP(window int) *TOTP {
	if window < 0 {
		window = DefaultWindow
	}

	return &TOTP{window: int64(window)}
}

// Window returns the configured number of tolerated steps.
func (o *TOTP) Window() int {
	return int(o.window)
}

// GenerateCode computes the code for the time step containing at.
func (o *TOTP) GenerateCode(secret Secret, at time.Time) (string, error) {
	return codeAt(secret.Base32(), uint64(max(counterAt(at), 0)))
}

// Validate reports whether code matches any step in [current-window, current+window].
//
// Malformed codes are rejected before any HMAC is computed. Every step in the
// window is computed and compared in constant time.
func (o *TOTP) Validate(secret Secret, code string, at time.Time) bool {
	if !ValidFormat(code) || len(secret) == 0 {
		return false
	}

	b32 := secret.Base32()
	current := counterAt(at)
	match := 0

	for step := -o.window; step <= o.window; step++ {
		counter := current + step
		if counter < 0 {
			continue
		}

		candidate, err := codeAt(b32, uint64(counter))
		if err != nil {
			return false
		}

		match |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}

	return match == 1
}

// ValidFormat reports whether code is exactly Digits ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != Digits {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}

func counterAt(at time.Time) int64 {
	unix := at.Unix()
	c := unix / Period
	if unix < 0 && unix%Period != 0 {
		c--
	}

	return c
}

func codeAt(b32 string, counter uint64) (string, error) {
	return hotp.GenerateCodeCustom(b32, counter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
