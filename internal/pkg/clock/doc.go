// Package clock provides the time source used by the access engine.
//
// Code evaluation, expiry checks and the audit trail all read time through
// Clocker so tests can pin it with Fake.
package clock
