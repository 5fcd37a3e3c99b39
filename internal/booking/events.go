package booking

import (
	"context"
	"time"

	"nawartu/internal/domain/reservations"
)

type EventType string

const (
	EventReservationCreated EventType = "reservation.created"
	EventStatusChanged      EventType = "reservation.status_changed"
	EventPaymentUpdated     EventType = "reservation.payment_updated"
	EventReviewAttached     EventType = "review.attached"
)

// Event is emitted after a change has been committed.
type Event struct {
	Type           EventType                `json:"type"`
	Reservation    reservations.Reservation `json:"reservation"`
	PreviousStatus reservations.Status      `json:"previous_status,omitempty"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

// Publisher delivers events without blocking the caller. Delivery failures
// are the publisher's to log; they never undo the committed change.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
