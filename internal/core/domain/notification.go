package domain

import "time"

// NotificationKind selects how a notification is rendered.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient banner. It is never persisted.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NotificationEvent is published on the event bus for the console that
// raised it.
type NotificationEvent struct {
	ChatID       int64
	Notification Notification
}
