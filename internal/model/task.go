package model

import (
	"strings"
	"time"
)

// Task is a locally persisted to-do item.
type Task struct {
	// ID is assigned by the store, increases monotonically and is never reused.
	ID int64 `json:"id" db:"id"`

	// Title is the user-visible text. Stored trimmed and never empty.
	Title string `json:"title" db:"title"`

	// Done is toggled by the user; false at creation unless imported as completed.
	Done bool `json:"done" db:"done"`

	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64 `json:"created_at" db:"created_at"`
}

// CreatedTime returns CreatedAt as a time.Time in local time.
func (t Task) CreatedTime() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// NormalizeTitle returns the de-duplication key for a title:
// surrounding whitespace removed, lowercased.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
