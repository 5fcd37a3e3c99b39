package ratings

import (
	"context"
	"testing"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReviewed(t *testing.T, store *memstore.Store, p properties.Property, checkIn time.Time, rating int) {
	t.Helper()
	ctx := context.Background()
	st := store.Stores()

	r := &reservations.Reservation{
		PropertyID:      p.ID,
		GuestID:         uuid.New(),
		HostID:          p.HostID,
		CheckIn:         checkIn,
		CheckOut:        checkIn.AddDate(0, 0, 2),
		GuestCount:      1,
		TotalPriceCents: 20000,
		Status:          reservations.StatusCompleted,
		PaymentStatus:   reservations.PaymentPaid,
		PaymentMethod:   reservations.MethodCreditCard,
	}
	require.NoError(t, st.Reservations.Create(ctx, r))
	_, err := st.Reservations.AttachReview(ctx, r.ID, reservations.Review{
		Rating: rating,
		Date:   checkIn.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
}

func TestAggregatorRecomputesOnReview(t *testing.T) {
	store := memstore.New()
	p := properties.Property{
		ID:             uuid.New(),
		HostID:         uuid.New(),
		BasePriceCents: 10000,
		GuestCapacity:  2,
		IsAvailable:    true,
	}
	store.AddProperty(p)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedReviewed(t, store, p, base, 5)
	seedReviewed(t, store, p, base.AddDate(0, 0, 5), 4)
	seedReviewed(t, store, p, base.AddDate(0, 0, 10), 4)

	agg := NewAggregator(store)
	err := agg.Handle(context.Background(), booking.Event{
		Type:        booking.EventReviewAttached,
		Reservation: reservations.Reservation{PropertyID: p.ID},
	})
	require.NoError(t, err)

	got, err := store.Stores().Properties.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.33, got.RatingAverage)
	assert.Equal(t, 3, got.RatingCount)
}

func TestAggregatorIgnoresOtherEvents(t *testing.T) {
	store := memstore.New()
	agg := NewAggregator(store)

	err := agg.Handle(context.Background(), booking.Event{
		Type:        booking.EventReservationCreated,
		Reservation: reservations.Reservation{PropertyID: uuid.New()},
	})
	assert.NoError(t, err)
}

func TestAggregatorUnknownProperty(t *testing.T) {
	agg := NewAggregator(memstore.New())

	err := agg.Recompute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, properties.ErrNotFound)
}
