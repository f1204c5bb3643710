package entity

import "time"

// AccessAttempt is one immutable audit record of an access decision.
type AccessAttempt struct {
	ID          string
	Seq         uint64
	PrincipalID *int64
	Code        string
	Timestamp   time.Time
	Outcome     Outcome
}

type LockdownState struct {
	Active    bool
	ChangedAt time.Time
}

type Dashboard struct {
	Total    int
	Active   int
	Expiring int
	Expired  int
	Inactive int
	Lockdown LockdownState
}

// Archive describes an uploaded audit export.
type Archive struct {
	Bucket  string
	Key     string
	Entries int
	Size    int64
	URL     string
}
