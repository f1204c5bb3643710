// Package validator validates request and domain input structs.
//
// Business code depends on the Validator interface. V10Validator implements it
// with go-playground/validator and English messages keyed by the json field
// name, so errors line up with the request body the client sent.
package validator

// Validator validates a struct and returns a field error map on failure.
type Validator interface {
	Validate(data any) error
}
