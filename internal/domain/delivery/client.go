package delivery

import (
	"context"
	"time"
)

// Payload is the renderable content of one reminder notification, plus the
// structured metadata carried for later correlation.
type Payload struct {
	Title      string
	Body       string
	LibraryID  string
	ItemID     string
	Question   string
	Answer     string
	BatchIndex int
	TriggerAt  time.Time
}

// Scheduled describes one pending notification known to the delivery layer.
type Scheduled struct {
	ItemID    string
	TriggerAt time.Time
}

// Client abstracts the notification delivery platform. This decouples the
// scheduling engine from the concrete messaging backend.
type Client interface {
	// RequestPermission reports whether the backend will accept
	// notifications for this user. Denial is a false, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	// ScheduleAt queues p to fire at the absolute time at.
	ScheduleAt(ctx context.Context, p Payload, at time.Time) error
	// Send delivers p immediately.
	Send(ctx context.Context, p Payload) error
	// CancelAll drops every pending scheduled notification. Safe no-op
	// when none exist.
	CancelAll(ctx context.Context) error
	// ListScheduled enumerates the currently pending notifications.
	ListScheduled(ctx context.Context) ([]Scheduled, error)
}
