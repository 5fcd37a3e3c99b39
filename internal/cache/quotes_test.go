package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nawartu/internal/booking"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuote() *booking.Quote {
	in := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &booking.Quote{
		PropertyID: uuid.New(),
		CheckIn:    in,
		CheckOut:   in.AddDate(0, 0, 2),
		Nights:     2,
		Days: []booking.DayPrice{
			{Date: in, PriceCents: 10000, IsAvailable: true, MinimumStay: 1},
			{Date: in.AddDate(0, 0, 1), PriceCents: 15000, IsAvailable: true, MinimumStay: 1, Custom: true},
		},
		TotalCents: 25000,
	}
}

func TestGetQuoteHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	q := sampleQuote()
	data, err := json.Marshal(q)
	require.NoError(t, err)

	mock.ExpectGet(versionKey(q.PropertyID)).SetVal("3")
	mock.ExpectGet(quoteKey(q.PropertyID, 3, q.CheckIn, q.CheckOut)).SetVal(string(data))

	got, version, ok, err := c.GetQuote(context.Background(), q.PropertyID, q.CheckIn, q.CheckOut)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), version)
	assert.Equal(t, q.TotalCents, got.TotalCents)
	assert.Len(t, got.Days, 2)
	assert.True(t, got.Days[1].Custom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuoteMissWithoutVersion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	q := sampleQuote()

	mock.ExpectGet(versionKey(q.PropertyID)).RedisNil()
	mock.ExpectGet(quoteKey(q.PropertyID, 0, q.CheckIn, q.CheckOut)).RedisNil()

	got, version, ok, err := c.GetQuote(context.Background(), q.PropertyID, q.CheckIn, q.CheckOut)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Zero(t, version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuoteRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	q := sampleQuote()

	mock.ExpectGet(versionKey(q.PropertyID)).SetErr(errors.New("connection refused"))

	_, _, ok, err := c.GetQuote(context.Background(), q.PropertyID, q.CheckIn, q.CheckOut)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPutQuoteUsesVersionFromRead(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	q := sampleQuote()
	data, err := json.Marshal(q)
	require.NoError(t, err)
	ctx := context.Background()

	mock.ExpectGet(versionKey(q.PropertyID)).RedisNil()
	mock.ExpectGet(quoteKey(q.PropertyID, 0, q.CheckIn, q.CheckOut)).RedisNil()
	mock.ExpectIncr(versionKey(q.PropertyID)).SetVal(1)
	mock.ExpectSet(quoteKey(q.PropertyID, 0, q.CheckIn, q.CheckOut), string(data), time.Minute).SetVal("OK")

	_, version, ok, err := c.GetQuote(ctx, q.PropertyID, q.CheckIn, q.CheckOut)
	require.NoError(t, err)
	require.False(t, ok)

	// a calendar write lands between the miss and the write-back
	require.NoError(t, c.Invalidate(ctx, q.PropertyID))
	require.NoError(t, c.PutQuote(ctx, q, version))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutQuoteSkipsFallback(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	q := sampleQuote()
	q.Fallback = true

	require.NoError(t, c.PutQuote(context.Background(), q, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateBumpsVersion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewQuoteCache(db, time.Minute)
	id := uuid.New()

	mock.ExpectIncr(versionKey(id)).SetVal(4)

	require.NoError(t, c.Invalidate(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
