package otp

import (
	"strings"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// EncodingError reports why a provisioning URI could not be rendered.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return "otp: invalid " + e.Field + ": " + e.Reason
}

// ProvisioningURI renders the otpauth:// URI consumed by authenticator apps.
//
// The label is "issuer:name" and the query carries the secret, algorithm,
// digits, period and issuer. No I/O is performed.
func ProvisioningURI(name string, secret Secret, issuer string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &EncodingError{Field: "name", Reason: "must not be empty"}
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", &EncodingError{Field: "name", Reason: "must not contain control characters"}
	}

	if err := checkIssuer(issuer); err != nil {
		return "", err
	}

	if len(secret) == 0 {
		return "", &EncodingError{Field: "secret", Reason: "must not be empty"}
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: name,
		Period:      Period,
		Secret:      secret,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", &EncodingError{Field: "uri", Reason: err.Error()}
	}

	return key.URL(), nil
}

func checkIssuer(issuer string) error {
	switch {
	case strings.TrimSpace(issuer) == "":
		return &EncodingError{Field: "issuer", Reason: "must not be empty"}
	case strings.Contains(issuer, ":"):
		// the colon separates issuer and account in the label
		return &EncodingError{Field: "issuer", Reason: "must not contain ':'"}
	case strings.IndexFunc(issuer, unicode.IsControl) >= 0:
		return &EncodingError{Field: "issuer", Reason: "must not contain control characters"}
	}

	return nil
}
