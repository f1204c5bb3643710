package uid

import "github.com/google/uuid"

// UUID yields time-ordered v7 ids so attempts and notifications sort by
// creation when compared as strings.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	// v7 only fails when the random source does; v4 reports that by panicking
	return uuid.NewString()
}
