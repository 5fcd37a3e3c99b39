package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultQuoteTTL = 10 * time.Minute

// QuoteCache keeps quotes in redis. Every key embeds the property's current
// version, so bumping the version orphans all of its quotes at once and
// they expire on their own.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{client: client, ttl: ttl}
}

func versionKey(propertyID uuid.UUID) string {
	return "quote:ver:" + propertyID.String()
}

func quoteKey(propertyID uuid.UUID, version int64, checkIn, checkOut time.Time) string {
	return fmt.Sprintf("quote:%s:v%d:%s:%s", propertyID, version, calendar.Key(checkIn), calendar.Key(checkOut))
}

func (c *QuoteCache) version(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(propertyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// GetQuote returns the cached quote and the property version it looked under.
func (c *QuoteCache) GetQuote(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (*booking.Quote, int64, bool, error) {
	v, err := c.version(ctx, propertyID)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, quoteKey(propertyID, v, checkIn, checkOut)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, v, false, nil
	}
	if err != nil {
		return nil, v, false, err
	}

	var q booking.Quote
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, v, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return &q, v, true, nil
}

// PutQuote stores q under the version GetQuote saw. If the property was
// invalidated in between, the entry lands on an orphaned key.
func (c *QuoteCache) PutQuote(ctx context.Context, q *booking.Quote, version int64) error {
	if q.Fallback {
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quoteKey(q.PropertyID, version, q.CheckIn, q.CheckOut), string(data), c.ttl).Err()
}

func (c *QuoteCache) Invalidate(ctx context.Context, propertyID uuid.UUID) error {
	return c.client.Incr(ctx, versionKey(propertyID)).Err()
}

var _ booking.QuoteCache = (*QuoteCache)(nil)
