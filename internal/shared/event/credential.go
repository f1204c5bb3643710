package event

import "time"

// CredentialDestination is the default topic for credential sync events.
const CredentialDestination string = "access_credential"

// CredentialAction names what happened to a credential.
type CredentialAction string

const (
	CredentialIssued    CredentialAction = "issued"
	CredentialRotated   CredentialAction = "rotated"
	CredentialActivated CredentialAction = "activated"
	CredentialRevoked   CredentialAction = "revoked"
)

// CredentialMessage is published to the broker for door controllers.
//
// SealedSecret is the XChaCha20-Poly1305 ciphertext of the TOTP secret bound
// to the credential id; it is empty on revoke.
type CredentialMessage struct {
	Action       CredentialAction `json:"action"`
	ID           int64            `json:"id"`
	Name         string           `json:"name,omitempty"`
	AccessClass  string           `json:"access_class,omitempty"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	Active       bool             `json:"active"`
	SealedSecret string           `json:"sealed_secret,omitempty"`
	Revision     uint64           `json:"revision,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}
