package clock

import "time"

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock.
type TimeClocker struct{}

// New returns a TimeClocker.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current time in UTC. Code windows, audit timestamps and
// archive keys are all computed in UTC.
func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}
