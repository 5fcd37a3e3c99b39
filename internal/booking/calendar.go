package booking

import (
	"context"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

// maxCalendarSpan caps host calendar reads and range writes.
const maxCalendarSpan = 366

// CalendarView is what a host sees for a range: the explicit overrides and
// the active reservations holding dates in it.
type CalendarView struct {
	PropertyID     uuid.UUID                  `json:"property_id"`
	Start          time.Time                  `json:"start"`
	End            time.Time                  `json:"end"`
	BasePriceCents int64                      `json:"base_price_cents"`
	Days           []calendar.Day             `json:"days"`
	Reservations   []reservations.Reservation `json:"reservations"`
}

// inclusiveRange validates [start, end] and returns its exclusive end.
func inclusiveRange(start, end time.Time) (time.Time, time.Time, error) {
	start, end = calendar.DateOf(start), calendar.DateOf(end)
	if err := calendar.ValidateDate("start", start); err != nil {
		return start, end, err
	}
	if err := calendar.ValidateDate("end", end); err != nil {
		return start, end, err
	}
	if end.Before(start) {
		return start, end, apperror.Validation("end", "end date must not be before start date")
	}
	endExclusive := end.AddDate(0, 0, 1)
	if calendar.Nights(start, endExclusive) > maxCalendarSpan {
		return start, end, apperror.Validation("end", "range must not exceed %d days", maxCalendarSpan)
	}
	return start, endExclusive, nil
}

// HostCalendar returns overrides and active reservations for [start, end].
func (s *Service) HostCalendar(ctx context.Context, propertyID uuid.UUID, start, end time.Time) (*CalendarView, error) {
	start, endExclusive, err := inclusiveRange(start, end)
	if err != nil {
		return nil, err
	}

	st := s.uow.Stores()
	p, err := loadProperty(ctx, st, propertyID)
	if err != nil {
		return nil, err
	}

	days, err := st.Calendar.GetOverridesInRange(ctx, propertyID, start, endExclusive)
	if err != nil {
		return nil, apperror.Dependency(err, "calendar lookup failed")
	}
	held, err := st.Reservations.FindOverlapping(ctx, propertyID, start, endExclusive, reservations.ActiveStatuses)
	if err != nil {
		return nil, apperror.Dependency(err, "reservation lookup failed")
	}

	return &CalendarView{
		PropertyID:     propertyID,
		Start:          start,
		End:            endExclusive.AddDate(0, 0, -1),
		BasePriceCents: p.BasePriceCents,
		Days:           days,
		Reservations:   held,
	}, nil
}

// UpdateCalendar applies per-date changes in one all-or-nothing write.
func (s *Service) UpdateCalendar(ctx context.Context, propertyID uuid.UUID, changes []calendar.Change) ([]calendar.Day, error) {
	if err := calendar.ValidateChanges(changes); err != nil {
		return nil, err
	}
	days, err := s.uow.Stores().Calendar.ApplyChanges(ctx, propertyID, changes)
	if err != nil {
		return nil, calendarError(err)
	}
	s.invalidate(ctx, propertyID)
	return days, nil
}

// SetDates writes the same fields on every listed date.
func (s *Service) SetDates(ctx context.Context, propertyID uuid.UUID, dates []time.Time, f calendar.Fields) ([]calendar.Day, error) {
	if len(dates) == 0 {
		return nil, apperror.Validation("dates", "at least one date is required")
	}
	if err := calendar.ValidateFields(f); err != nil {
		return nil, err
	}
	days, err := s.uow.Stores().Calendar.BulkUpsert(ctx, propertyID, dates, f)
	if err != nil {
		return nil, calendarError(err)
	}
	s.invalidate(ctx, propertyID)
	return days, nil
}

// BlockRange blocks every date from start through end inclusive.
func (s *Service) BlockRange(ctx context.Context, propertyID uuid.UUID, start, end time.Time, reason calendar.BlockReason, notes string) ([]calendar.Day, error) {
	start, endExclusive, err := inclusiveRange(start, end)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = calendar.ReasonOther
	}
	blocked := true
	f := calendar.Fields{
		IsBlocked:     &blocked,
		BlockedReason: &reason,
	}
	if notes != "" {
		f.Notes = &notes
	}
	return s.SetDates(ctx, propertyID, calendar.Dates(start, endExclusive), f)
}

// CustomPrice sets or, with a nil price, clears one date's custom price.
type CustomPrice struct {
	Date       time.Time
	PriceCents *int64
}

type PricingUpdate struct {
	BasePriceCents *int64
	Custom         []CustomPrice
}

// UpdatePricing changes the base price and the listed custom prices in one
// unit of work: either both land or neither does.
func (s *Service) UpdatePricing(ctx context.Context, propertyID uuid.UUID, u PricingUpdate) error {
	if u.BasePriceCents == nil && len(u.Custom) == 0 {
		return apperror.Validation("base_price", "nothing to update")
	}
	if u.BasePriceCents != nil && *u.BasePriceCents < 0 {
		return apperror.Validation("base_price", "base price cannot be negative")
	}

	changes := make([]calendar.Change, 0, len(u.Custom))
	for _, c := range u.Custom {
		f := calendar.Fields{CustomPriceCents: c.PriceCents, ClearCustomPrice: c.PriceCents == nil}
		changes = append(changes, calendar.Change{Date: calendar.DateOf(c.Date), Fields: f})
	}
	if len(changes) > 0 {
		if err := calendar.ValidateChanges(changes); err != nil {
			return err
		}
	}

	err := s.uow.WithPropertyLock(ctx, propertyID, func(st Stores) error {
		if u.BasePriceCents != nil {
			if err := st.Properties.UpdateBasePrice(ctx, propertyID, *u.BasePriceCents); err != nil {
				return propertyError(propertyID, err)
			}
		}
		if len(changes) > 0 {
			if _, err := st.Calendar.ApplyChanges(ctx, propertyID, changes); err != nil {
				return calendarError(err)
			}
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			return apperror.Dependency(err, "pricing update failed")
		}
		return err
	}
	s.invalidate(ctx, propertyID)
	return nil
}

func calendarError(err error) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}
	return apperror.Dependency(err, "calendar storage unavailable")
}
