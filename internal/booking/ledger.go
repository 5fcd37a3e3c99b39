package booking

import (
	"context"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

// GetReservation returns a reservation visible to actor: its guest, its host,
// or an admin/system caller.
func (s *Service) GetReservation(ctx context.Context, id uuid.UUID, actor reservations.Actor) (*reservations.Reservation, error) {
	r, err := loadReservation(ctx, s.uow.Stores(), id)
	if err != nil {
		return nil, err
	}
	if !canView(r, actor) {
		return nil, apperror.Forbidden("not allowed to view this reservation")
	}
	return r, nil
}

func canView(r *reservations.Reservation, actor reservations.Actor) bool {
	switch actor.Role {
	case reservations.RoleAdmin, reservations.RoleSystem:
		return true
	}
	return actor.UserID != uuid.Nil && (actor.UserID == r.GuestID || actor.UserID == r.HostID)
}

// Transition moves a reservation along the status state machine. The write
// only succeeds if the status is still the one that was validated.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to reservations.Status, actor reservations.Actor, reason string) (*reservations.Reservation, error) {
	st := s.uow.Stores()
	r, err := loadReservation(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if err := reservations.CheckTransition(r, to, actor, reason, s.now()); err != nil {
		return nil, err
	}

	updated, err := st.Reservations.UpdateStatus(ctx, id, r.Status, to, reason)
	if err != nil {
		return nil, ledgerError(err)
	}

	s.invalidate(ctx, updated.PropertyID)
	s.publish(ctx, EventStatusChanged, updated, r.Status)
	return updated, nil
}

// AttachReview records the guest's review of a completed stay.
func (s *Service) AttachReview(ctx context.Context, id uuid.UUID, actor reservations.Actor, rating int, comment string) (*reservations.Reservation, error) {
	st := s.uow.Stores()
	r, err := loadReservation(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != reservations.RoleGuest || actor.UserID != r.GuestID {
		return nil, apperror.Forbidden("only the guest can review this stay")
	}
	if err := reservations.CheckReview(r, rating, comment); err != nil {
		return nil, err
	}

	updated, err := st.Reservations.AttachReview(ctx, id, reservations.Review{
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Date:    s.now().UTC(),
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	s.publish(ctx, EventReviewAttached, updated, "")
	return updated, nil
}

// CapturePayment marks a reservation paid, confirming it first when it is
// still pending. Capturing an already paid reservation is a no-op.
func (s *Service) CapturePayment(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	st := s.uow.Stores()
	r, err := loadReservation(ctx, st, id)
	if err != nil {
		return nil, err
	}

	switch r.Status {
	case reservations.StatusPending:
		if r, err = s.Transition(ctx, id, reservations.StatusConfirmed, reservations.SystemActor, ""); err != nil {
			return nil, err
		}
	case reservations.StatusConfirmed:
	default:
		return nil, apperror.Conflict("cannot capture payment for a %s reservation", r.Status)
	}
	if r.PaymentStatus == reservations.PaymentPaid {
		return r, nil
	}

	return s.setPayment(ctx, st, r, reservations.PaymentPaid)
}

// RefundPayment cancels an active reservation and marks its payment
// refunded. Only paid reservations can be refunded.
func (s *Service) RefundPayment(ctx context.Context, id uuid.UUID, reason string) (*reservations.Reservation, error) {
	st := s.uow.Stores()
	r, err := loadReservation(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if r.PaymentStatus != reservations.PaymentPaid {
		return nil, apperror.Conflict("reservation payment is %s, nothing to refund", r.PaymentStatus)
	}

	if r.Status.Active() {
		if strings.TrimSpace(reason) == "" {
			reason = "payment refunded"
		}
		if r, err = s.Transition(ctx, id, reservations.StatusCancelled, reservations.SystemActor, reason); err != nil {
			return nil, err
		}
	}

	return s.setPayment(ctx, st, r, reservations.PaymentRefunded)
}

func (s *Service) setPayment(ctx context.Context, st Stores, r *reservations.Reservation, ps reservations.PaymentStatus) (*reservations.Reservation, error) {
	updated, err := st.Reservations.SetPaymentStatus(ctx, r.ID, ps)
	if err != nil {
		return nil, ledgerError(err)
	}
	s.publish(ctx, EventPaymentUpdated, updated, "")
	return updated, nil
}

// AggregateRevenue computes booking statistics for stays that start on or
// after from and end on or before to.
func (s *Service) AggregateRevenue(ctx context.Context, scope reservations.Scope, from, to time.Time) (*reservations.Stats, error) {
	from, to = calendar.DateOf(from), calendar.DateOf(to)
	if err := calendar.ValidateDate("start", from); err != nil {
		return nil, err
	}
	if err := calendar.ValidateDate("end", to); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperror.Validation("end", "end date must be after start date")
	}
	if scope.PropertyID == uuid.Nil && scope.HostID == uuid.Nil {
		return nil, apperror.Validation("scope", "a property or host is required")
	}

	st := s.uow.Stores()
	f := reservations.Filter{CheckInFrom: from, CheckOutTo: to}
	units := 1
	if scope.PropertyID != uuid.Nil {
		f.PropertyID = scope.PropertyID
	} else {
		f.HostID = scope.HostID
		n, err := st.Properties.CountByHost(ctx, scope.HostID)
		if err != nil {
			return nil, apperror.Dependency(err, "could not count host properties")
		}
		units = n
	}

	list, err := st.Reservations.List(ctx, f)
	if err != nil {
		return nil, ledgerError(err)
	}

	stats := reservations.ComputeStats(list, from, to, units)
	return &stats, nil
}

// MonthlySummary is AggregateRevenue over one calendar month of a host.
func (s *Service) MonthlySummary(ctx context.Context, hostID uuid.UUID, year, month int) (*reservations.Stats, error) {
	if month < 1 || month > 12 {
		return nil, apperror.Validation("month", "month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, apperror.Validation("year", "year %d is out of range", year)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return s.AggregateRevenue(ctx, reservations.Scope{HostID: hostID}, from, from.AddDate(0, 1, 0))
}

// PropertyReservations pages through a property's reservations, newest stay
// first, and returns the total count.
func (s *Service) PropertyReservations(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]reservations.Reservation, int, error) {
	st := s.uow.Stores()
	f := reservations.Filter{PropertyID: propertyID}

	total, err := st.Reservations.Count(ctx, f)
	if err != nil {
		return nil, 0, ledgerError(err)
	}

	f.Limit, f.Offset = limit, offset
	list, err := st.Reservations.List(ctx, f)
	if err != nil {
		return nil, 0, ledgerError(err)
	}
	return list, total, nil
}

// CompleteDue moves confirmed reservations whose check-out has passed to
// completed. It returns how many were completed; a failure on one
// reservation is logged and does not stop the rest.
func (s *Service) CompleteDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.uow.Stores().Reservations.List(ctx, reservations.Filter{
		Statuses:   []reservations.Status{reservations.StatusConfirmed},
		CheckOutTo: now,
	})
	if err != nil {
		return 0, ledgerError(err)
	}

	done := 0
	for _, r := range due {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.Transition(ctx, r.ID, reservations.StatusCompleted, reservations.SystemActor, ""); err != nil {
			s.logger.Warnw("could not complete reservation", "reservation_id", r.ID, "error", err.Error())
			continue
		}
		done++
	}
	return done, nil
}
