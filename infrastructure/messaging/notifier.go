// Package messaging provides the in-process notification bus that
// replaces the original ambient toast dispatch with an injected pub/sub.
package messaging

import (
	"sync"

	"safesite-backend/application/ports"

	"go.uber.org/zap"
)

// Notifier is a synchronous fan-out bus. Handlers run in subscription
// order on the publisher's goroutine, so notifications arrive in publish
// order for every subscriber.
type Notifier struct {
	mu       sync.RWMutex
	handlers map[int]ports.NotificationHandler
	nextID   int
	logger   *zap.Logger
}

// NewNotifier creates the notification bus.
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{
		handlers: make(map[int]ports.NotificationHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (n *Notifier) Subscribe(handler ports.NotificationHandler) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = handler
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.handlers, id)
		n.mu.Unlock()
	}
}

// Publish delivers a notification to every subscriber.
func (n *Notifier) Publish(event ports.Notification) {
	n.mu.RLock()
	ids := make([]int, 0, len(n.handlers))
	for id := range n.handlers {
		ids = append(ids, id)
	}
	// Stable delivery order: subscription order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	handlers := make([]ports.NotificationHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, n.handlers[id])
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// LogSubscriber returns a handler that mirrors notifications into the
// structured log, matching level to log severity.
func LogSubscriber(logger *zap.Logger) ports.NotificationHandler {
	return func(event ports.Notification) {
		fields := []zap.Field{
			zap.String("level", string(event.Level)),
			zap.Time("at", event.Time),
		}
		switch event.Level {
		case ports.LevelError:
			logger.Error(event.Message, fields...)
		case ports.LevelWarning:
			logger.Warn(event.Message, fields...)
		default:
			logger.Info(event.Message, fields...)
		}
	}
}
