// Package memory holds the authoritative in-process state of the access
// domain: the credential store, the audit log and the lockdown switch.
//
// Lock order is store lock first, then record lock. Every value handed out is
// a deep copy.
package memory
