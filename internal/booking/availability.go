package booking

import (
	"context"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

// IsRangeAvailable reports whether every night of [checkIn, checkOut) is open
// and unclaimed. Minimum stay is not considered.
func (s *Service) IsRangeAvailable(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	err := s.CheckRange(ctx, propertyID, checkIn, checkOut)
	if err == nil {
		return true, nil
	}
	if apperror.Is(err, apperror.KindConflict) {
		return false, nil
	}
	return false, err
}

// CheckRange is IsRangeAvailable with the reason: nil when the range can be
// booked, a Conflict naming the first blocked date or the overlapping stay
// otherwise.
func (s *Service) CheckRange(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) error {
	checkIn, checkOut = calendar.DateOf(checkIn), calendar.DateOf(checkOut)
	if err := calendar.ValidateRange(checkIn, checkOut); err != nil {
		return err
	}

	st := s.uow.Stores()
	p, err := loadProperty(ctx, st, propertyID)
	if err != nil {
		return err
	}
	if !p.IsAvailable {
		return notAccepting(propertyID)
	}

	_, err = checkRange(ctx, st, propertyID, checkIn, checkOut)
	return err
}

// checkRange runs the calendar and ledger checks and returns the overrides it
// read so the caller can price from the same snapshot.
func checkRange(ctx context.Context, st Stores, propertyID uuid.UUID, checkIn, checkOut time.Time) (calendar.Overrides, error) {
	days, err := st.Calendar.GetOverridesInRange(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, apperror.Dependency(err, "calendar lookup failed")
	}
	ov := calendar.NewOverrides(days)

	if d, closed := ov.FirstClosed(checkIn, checkOut); closed {
		return ov, blockedError(d)
	}

	existing, err := st.Reservations.FindOverlapping(ctx, propertyID, checkIn, checkOut, reservations.ActiveStatuses)
	if err != nil {
		return nil, apperror.Dependency(err, "reservation lookup failed")
	}
	if len(existing) > 0 {
		return ov, overlapError(checkIn, checkOut, &existing[0])
	}
	return ov, nil
}

func unavailable(format string, args ...any) *apperror.Error {
	return apperror.Conflict("dates not available: "+format, args...)
}

func blockedError(d calendar.Day) error {
	if d.IsBlocked {
		return unavailable("%s is blocked (%s)", calendar.Key(d.Date), d.BlockedReason)
	}
	return unavailable("%s is not open for booking", calendar.Key(d.Date))
}

func overlapError(checkIn, checkOut time.Time, existing *reservations.Reservation) error {
	return unavailable("%s to %s overlaps an existing stay from %s to %s",
		calendar.Key(checkIn), calendar.Key(checkOut),
		calendar.Key(existing.CheckIn), calendar.Key(existing.CheckOut))
}

// commitOverlapError is the write-time twin of overlapError, raised when
// storage rejects the row after the read-time check passed.
func commitOverlapError(checkIn, checkOut time.Time) error {
	return unavailable("%s to %s overlaps an existing stay", calendar.Key(checkIn), calendar.Key(checkOut))
}

func notAccepting(propertyID uuid.UUID) error {
	return apperror.Conflict("property %s is not accepting bookings", propertyID)
}
