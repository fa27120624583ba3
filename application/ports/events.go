package ports

import "time"

// NotificationLevel classifies user-facing notifications.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is one transient user-facing event. Every failure path in
// the application produces exactly one of these.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	Time    time.Time         `json:"time"`
}

// NotificationHandler receives published notifications synchronously in
// publish order.
type NotificationHandler func(Notification)

// EventBus is the injected notification pub/sub used instead of ambient
// global dispatch. Subscribe returns the corresponding unsubscribe
// function.
type EventBus interface {
	Subscribe(handler NotificationHandler) (unsubscribe func())
	Publish(n Notification)
}
