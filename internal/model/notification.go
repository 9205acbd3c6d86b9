package model

import "time"

// NotificationLevel classifies a notification for display.
type NotificationLevel string

const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notification is a user-visible message describing the outcome of an
// operation (for example an import summary or a failed edit).
type Notification struct {
	// Level is info for outcomes and error for failures.
	Level NotificationLevel `json:"level"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
