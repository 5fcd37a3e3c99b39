package booking_test

import (
	"context"
	"testing"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRangeIsInclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days, err := f.svc.BlockRange(ctx, f.property.ID, date("2024-06-10"), date("2024-06-12"), calendar.ReasonMaintenance, "boiler")
	require.NoError(t, err)
	require.Len(t, days, 3)
	for _, d := range days {
		assert.True(t, d.IsBlocked)
		assert.Equal(t, calendar.ReasonMaintenance, d.BlockedReason)
		assert.Equal(t, "boiler", d.Notes)
	}

	ok, err := f.svc.IsRangeAvailable(ctx, f.property.ID, date("2024-06-12"), date("2024-06-13"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.IsRangeAvailable(ctx, f.property.ID, date("2024-06-13"), date("2024-06-14"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBlockRangeRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BlockRange(ctx, f.property.ID, date("2024-06-12"), date("2024-06-10"), "", "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.BlockRange(ctx, f.property.ID, date("2024-06-10"), date("2024-06-12"), "holiday", "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.BlockRange(ctx, f.property.ID, date("2024-01-01"), date("2025-06-01"), "", "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestHostCalendarView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.override(t, "2024-06-02", calendar.Fields{CustomPriceCents: ptr(int64(12000))})
	f.override(t, "2024-07-02", calendar.Fields{CustomPriceCents: ptr(int64(12000))})
	_, err := f.book("2024-06-28", "2024-07-02")
	require.NoError(t, err)

	view, err := f.svc.HostCalendar(ctx, f.property.ID, date("2024-06-01"), date("2024-06-30"))
	require.NoError(t, err)

	assert.Equal(t, date("2024-06-30"), view.End)
	assert.Equal(t, int64(10000), view.BasePriceCents)
	require.Len(t, view.Days, 1)
	assert.Equal(t, date("2024-06-02"), view.Days[0].Date)
	require.Len(t, view.Reservations, 1)
}

func TestUpdateCalendarAppliesPerDateChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days, err := f.svc.UpdateCalendar(ctx, f.property.ID, []calendar.Change{
		{Date: date("2024-06-01"), Fields: calendar.Fields{MinimumStay: ptr(2)}},
		{Date: date("2024-06-02"), Fields: calendar.Fields{IsAvailable: ptr(false)}},
	})
	require.NoError(t, err)
	require.Len(t, days, 2)

	_, err = f.svc.UpdateCalendar(ctx, f.property.ID, nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdatePricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.override(t, "2024-06-03", calendar.Fields{CustomPriceCents: ptr(int64(50000))})

	err := f.svc.UpdatePricing(ctx, f.property.ID, booking.PricingUpdate{
		BasePriceCents: ptr(int64(12000)),
		Custom: []booking.CustomPrice{
			{Date: date("2024-06-02"), PriceCents: ptr(int64(15000))},
			{Date: date("2024-06-03")},
		},
	})
	require.NoError(t, err)

	q, err := f.svc.PriceRange(ctx, f.property.ID, date("2024-06-01"), date("2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, int64(12000+15000+12000), q.TotalCents)

	err = f.svc.UpdatePricing(ctx, f.property.ID, booking.PricingUpdate{BasePriceCents: ptr(int64(-1))})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = f.svc.UpdatePricing(ctx, f.property.ID, booking.PricingUpdate{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdatePricingIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(failingApplyUoW{f.store})

	err := svc.UpdatePricing(ctx, f.property.ID, booking.PricingUpdate{
		BasePriceCents: ptr(int64(12000)),
		Custom:         []booking.CustomPrice{{Date: date("2024-06-02"), PriceCents: ptr(int64(15000))}},
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindDependency))

	p, err := f.store.Stores().Properties.GetByID(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), p.BasePriceCents)
}

func TestSetDatesRequiresDates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetDates(context.Background(), f.property.ID, []time.Time{}, calendar.Fields{IsBlocked: ptr(true)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
