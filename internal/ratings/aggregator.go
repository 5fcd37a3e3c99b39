package ratings

import (
	"context"
	"fmt"
	"math"

	"nawartu/internal/booking"

	"github.com/google/uuid"
)

// Source exposes the repositories the aggregator reads and writes.
type Source interface {
	Stores() booking.Stores
}

// Aggregator keeps a property's rating in step with the reviews attached to
// its reservations. It runs after the review is committed.
type Aggregator struct {
	src Source
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

func (a *Aggregator) Name() string { return "ratings" }

func (a *Aggregator) Handle(ctx context.Context, e booking.Event) error {
	if e.Type != booking.EventReviewAttached {
		return nil
	}
	return a.Recompute(ctx, e.Reservation.PropertyID)
}

// Recompute recalculates the average from every review of the property, so
// replaying it is harmless.
func (a *Aggregator) Recompute(ctx context.Context, propertyID uuid.UUID) error {
	st := a.src.Stores()

	avg, count, err := st.Reservations.ReviewSummary(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("review summary: %w", err)
	}
	avg = math.Round(avg*100) / 100

	if err := st.Properties.UpdateRating(ctx, propertyID, avg, count); err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	return nil
}
