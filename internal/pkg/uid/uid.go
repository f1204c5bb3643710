// Package uid generates identifiers.
//
// NumberID backs credential ids (sortable, never reused within a node) and
// StringID backs attempt, notification and correlation ids.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
