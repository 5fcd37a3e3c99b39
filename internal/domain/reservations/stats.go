package reservations

import (
	"math"
	"time"

	"nawartu/internal/domain/calendar"
)

type Stats struct {
	TotalBookings            int     `json:"total_bookings"`
	ConfirmedBookings        int     `json:"confirmed_bookings"`
	CompletedBookings        int     `json:"completed_bookings"`
	CancelledBookings        int     `json:"cancelled_bookings"`
	PendingBookings          int     `json:"pending_bookings"`
	TotalRevenueCents        int64   `json:"total_revenue_cents"`
	AverageBookingValueCents int64   `json:"average_booking_value_cents"`
	TotalNights              int     `json:"total_nights"`
	TotalDays                int     `json:"total_days"`
	Units                    int     `json:"units"`
	OccupancyRate            float64 `json:"occupancy_rate"`
}

// earns reports whether the reservation counts towards revenue and nights.
func earns(s Status) bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// ComputeStats aggregates reservations that fall inside [from, to). units is
// the number of properties the range is measured against; occupancy is the
// share of available unit-nights that were sold, rounded to two decimals.
func ComputeStats(list []Reservation, from, to time.Time, units int) Stats {
	if units < 1 {
		units = 1
	}
	s := Stats{
		TotalDays: calendar.Nights(from, to),
		Units:     units,
	}

	earning := 0
	for i := range list {
		r := &list[i]
		s.TotalBookings++
		switch r.Status {
		case StatusConfirmed:
			s.ConfirmedBookings++
		case StatusCompleted:
			s.CompletedBookings++
		case StatusCancelled:
			s.CancelledBookings++
		case StatusPending:
			s.PendingBookings++
		}
		if !earns(r.Status) {
			continue
		}
		earning++
		s.TotalRevenueCents += r.TotalPriceCents
		s.TotalNights += r.Nights()
	}

	if earning > 0 {
		s.AverageBookingValueCents = int64(math.Round(float64(s.TotalRevenueCents) / float64(earning)))
	}
	if capacity := s.TotalDays * units; capacity > 0 {
		rate := float64(s.TotalNights) / float64(capacity) * 100
		s.OccupancyRate = math.Round(rate*100) / 100
	}
	return s
}
