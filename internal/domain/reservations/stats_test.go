package reservations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stay(status Status, in, out string, cents int64) Reservation {
	ci, _ := time.Parse("2006-01-02", in)
	co, _ := time.Parse("2006-01-02", out)
	return Reservation{CheckIn: ci, CheckOut: co, Status: status, TotalPriceCents: cents}
}

func TestComputeStats(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	list := []Reservation{
		stay(StatusConfirmed, "2024-06-01", "2024-06-04", 30000),
		stay(StatusCompleted, "2024-06-10", "2024-06-16", 60000),
		stay(StatusCancelled, "2024-06-20", "2024-06-22", 20000),
		stay(StatusPending, "2024-06-25", "2024-06-27", 20000),
	}

	s := ComputeStats(list, from, to, 1)

	assert.Equal(t, 4, s.TotalBookings)
	assert.Equal(t, 1, s.ConfirmedBookings)
	assert.Equal(t, 1, s.CompletedBookings)
	assert.Equal(t, 1, s.CancelledBookings)
	assert.Equal(t, 1, s.PendingBookings)
	assert.Equal(t, int64(90000), s.TotalRevenueCents)
	assert.Equal(t, int64(45000), s.AverageBookingValueCents)
	assert.Equal(t, 9, s.TotalNights)
	assert.Equal(t, 30, s.TotalDays)
	assert.Equal(t, 30.0, s.OccupancyRate)
}

func TestComputeStatsAcrossUnits(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	list := []Reservation{
		stay(StatusConfirmed, "2024-06-01", "2024-06-06", 50000),
	}

	s := ComputeStats(list, from, to, 2)
	assert.Equal(t, 2, s.Units)
	assert.Equal(t, 25.0, s.OccupancyRate)
}

func TestComputeStatsEmpty(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := ComputeStats(nil, from, from, 0)

	assert.Zero(t, s.TotalBookings)
	assert.Zero(t, s.AverageBookingValueCents)
	assert.Zero(t, s.OccupancyRate)
	assert.Equal(t, 1, s.Units)
}
