package ports

import (
	"time"
)

// NotificationSink delivers human-readable alerts to an external channel.
// Delivery is fire-and-forget: failures are reported to the caller but must
// never abort the caller's primary workflow.
type NotificationSink interface {
	// Send posts a raw message to the channel.
	Send(text string) error

	// SpamDetected sends the spam-detected template.
	SpamDetected(subject, sender string, receivedAt time.Time) error

	// HamVerified sends the ham-verified template.
	HamVerified(subject, sender string, receivedAt time.Time) error

	// ServiceStarted sends the service-started template.
	ServiceStarted() error

	// ErrorOccurred sends the error template.
	ErrorOccurred(message string) error
}
