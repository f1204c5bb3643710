package entity

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

type AccessClass int16

const (
	// AccessClassUnknown is mean class is not known / not set.
	AccessClassUnknown AccessClass = 0

	// AccessClassPermanent is for staff; keys live for a year.
	AccessClassPermanent AccessClass = 1

	// AccessClassGuest is for visitors; keys live for a week.
	AccessClassGuest AccessClass = 2

	// AccessClassBusinessTrip is for seconded staff; keys live for a month.
	AccessClassBusinessTrip AccessClass = 3
)

func (ac AccessClass) String() string {
	switch ac {
	case AccessClassPermanent:
		return "permanent"
	case AccessClassGuest:
		return "guest"
	case AccessClassBusinessTrip:
		return "business_trip"
	default:
		return "unknown"
	}
}

// Duration is the key lifetime granted at issuance or on extended rotation.
func (ac AccessClass) Duration() time.Duration {
	switch ac {
	case AccessClassPermanent:
		return 365 * day
	case AccessClassGuest:
		return 7 * day
	case AccessClassBusinessTrip:
		return 30 * day
	default:
		return 0
	}
}

func (ac AccessClass) IsUnknown() bool {
	switch ac {
	case AccessClassPermanent, AccessClassGuest, AccessClassBusinessTrip:
		return false
	default:
		return true
	}
}

func ParseAccessClass(s string) AccessClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permanent":
		return AccessClassPermanent
	case "guest":
		return AccessClassGuest
	case "business_trip":
		return AccessClassBusinessTrip
	default:
		return AccessClassUnknown
	}
}

type Outcome int16

const (
	OutcomeUnknown             Outcome = 0
	OutcomeGranted             Outcome = 1
	OutcomeDeniedInvalidFormat Outcome = 2
	OutcomeDeniedNoMatch       Outcome = 3
	OutcomeDeniedLockdown      Outcome = 4
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeDeniedInvalidFormat:
		return "denied_invalid_format"
	case OutcomeDeniedNoMatch:
		return "denied_no_match"
	case OutcomeDeniedLockdown:
		return "denied_lockdown"
	default:
		return "unknown"
	}
}

func (o Outcome) IsGranted() bool {
	return o == OutcomeGranted
}

func (o Outcome) IsDenied() bool {
	switch o {
	case OutcomeDeniedInvalidFormat, OutcomeDeniedNoMatch, OutcomeDeniedLockdown:
		return true
	default:
		return false
	}
}

// OutcomeFilter selects audit entries by category.
type OutcomeFilter int16

const (
	OutcomeFilterAll     OutcomeFilter = 0
	OutcomeFilterGranted OutcomeFilter = 1
	OutcomeFilterDenied  OutcomeFilter = 2
)

func (f OutcomeFilter) String() string {
	switch f {
	case OutcomeFilterGranted:
		return "granted"
	case OutcomeFilterDenied:
		return "denied"
	default:
		return "all"
	}
}

func (f OutcomeFilter) Match(o Outcome) bool {
	switch f {
	case OutcomeFilterGranted:
		return o.IsGranted()
	case OutcomeFilterDenied:
		return o.IsDenied()
	default:
		return true
	}
}

// ParseOutcomeFilter reports false for values other than all, granted, denied
// and the empty string.
func ParseOutcomeFilter(s string) (OutcomeFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return OutcomeFilterAll, true
	case "granted":
		return OutcomeFilterGranted, true
	case "denied":
		return OutcomeFilterDenied, true
	default:
		return OutcomeFilterAll, false
	}
}

// CredentialStatus is the derived dashboard state of a credential.
type CredentialStatus int16

const (
	CredentialStatusActive   CredentialStatus = 1
	CredentialStatusExpiring CredentialStatus = 2
	CredentialStatusExpired  CredentialStatus = 3
	CredentialStatusInactive CredentialStatus = 4
)

func (cs CredentialStatus) String() string {
	switch cs {
	case CredentialStatusActive:
		return "active"
	case CredentialStatusExpiring:
		return "expiring"
	case CredentialStatusExpired:
		return "expired"
	case CredentialStatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// StatusFilter selects credentials for listing.
type StatusFilter int16

const (
	StatusFilterAll      StatusFilter = 0
	StatusFilterActive   StatusFilter = 1
	StatusFilterExpiring StatusFilter = 2
	StatusFilterExpired  StatusFilter = 3
)

func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusFilterAll, true
	case "active":
		return StatusFilterActive, true
	case "expiring":
		return StatusFilterExpiring, true
	case "expired":
		return StatusFilterExpired, true
	default:
		return StatusFilterAll, false
	}
}
