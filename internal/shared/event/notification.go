package event

// Severity classifies a notification for the operator feed.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// NotificationMessage is a human-readable state change raised by the access
// domain and appended to the notification feed.
type NotificationMessage struct {
	Severity Severity
	Message  string
}
