package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuoteCache stores computed quotes. Invalidate must make every quote cached
// for the property unreachable. GetQuote reports the cache version it read;
// PutQuote stores under that version, so a quote priced before an
// invalidation is never visible after it.
type QuoteCache interface {
	GetQuote(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (*Quote, int64, bool, error)
	PutQuote(ctx context.Context, q *Quote, version int64) error
	Invalidate(ctx context.Context, propertyID uuid.UUID) error
}

type nopCache struct{}

func (nopCache) GetQuote(context.Context, uuid.UUID, time.Time, time.Time) (*Quote, int64, bool, error) {
	return nil, 0, false, nil
}

func (nopCache) PutQuote(context.Context, *Quote, int64) error { return nil }

func (nopCache) Invalidate(context.Context, uuid.UUID) error { return nil }
