package entity

import (
	"time"

	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

// Notification is one entry of the operator feed. Entries are never edited.
type Notification struct {
	ID        string
	Severity  event.Severity
	Message   string
	Timestamp time.Time
}
