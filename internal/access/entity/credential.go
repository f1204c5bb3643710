package entity

import (
	"time"

	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
)

// Credential binds a principal name to a TOTP secret.
//
// Secret never leaves the access domain except through Provisioning on issue
// or rotate, and sealed on the broker.
type Credential struct {
	ID          int64
	Name        string
	AccessClass AccessClass
	Secret      otp.Secret
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RotatedAt   *time.Time
	Disclosed   bool
	Active      bool
	// Revision grows by one on every committed change.
	Revision    uint64
}

// Clone returns a deep copy that shares no memory with c.
func (c Credential) Clone() Credential {
	out := c
	out.Secret = c.Secret.Clone()
	if c.RotatedAt != nil {
		t := *c.RotatedAt
		out.RotatedAt = &t
	}
	return out
}

func (c Credential) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// IsExpiring reports an active credential expiring in (now, now+within].
func (c Credential) IsExpiring(now time.Time, within time.Duration) bool {
	return c.Active && c.ExpiresAt.After(now) && !c.ExpiresAt.After(now.Add(within))
}

// CanEnter reports whether the credential takes part in evaluation.
func (c Credential) CanEnter(now time.Time) bool {
	return c.Active && !c.IsExpired(now)
}

func (c Credential) Status(now time.Time, expiringWithin time.Duration) CredentialStatus {
	switch {
	case !c.Active:
		return CredentialStatusInactive
	case c.IsExpired(now):
		return CredentialStatusExpired
	case c.IsExpiring(now, expiringWithin):
		return CredentialStatusExpiring
	default:
		return CredentialStatusActive
	}
}

// DaysLeft rounds the remaining lifetime up to whole days.
func (c Credential) DaysLeft(now time.Time) int {
	left := c.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + day - 1) / day)
}

// Provisioning is the one-shot material shown to the principal's operator.
// It is only ever produced by issue and rotate.
type Provisioning struct {
	URI    string
	Secret string
	QRCode string
}

type IssuedCredential struct {
	Credential
	Provisioning Provisioning
}

// Less orders by issuance then id, which is also the evaluation tie-break.
func Less(a, b Credential) bool {
	if !a.IssuedAt.Equal(b.IssuedAt) {
		return a.IssuedAt.Before(b.IssuedAt)
	}
	return a.ID < b.ID
}
