package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

type CreateReservationInput struct {
	PropertyID      uuid.UUID
	GuestID         uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	PaymentMethod   reservations.PaymentMethod
	SpecialRequests string
}

// InitialStatus decides how a new reservation starts. Cash on an
// instant-bookable property is confirmed at once and paid on arrival; every
// other combination waits for the host or the payment capture.
func InitialStatus(p *properties.Property, method reservations.PaymentMethod) (reservations.Status, reservations.PaymentStatus) {
	if method == reservations.MethodCash && p.InstantBookable {
		return reservations.StatusConfirmed, reservations.PaymentPending
	}
	return reservations.StatusPending, reservations.PaymentPending
}

// CreateReservation validates, prices and commits a reservation. The
// availability re-check, the minimum stay check, pricing and the insert run
// under the property's lock, so two overlapping requests cannot both commit.
func (s *Service) CreateReservation(ctx context.Context, in CreateReservationInput) (*reservations.Reservation, error) {
	// 1. validate input before touching storage
	checkIn, checkOut := calendar.DateOf(in.CheckIn), calendar.DateOf(in.CheckOut)
	if err := calendar.ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	if in.GuestCount < 1 {
		return nil, apperror.Validation("guest_count", "guest count must be at least 1")
	}
	method := in.PaymentMethod
	if method == "" {
		method = reservations.MethodCreditCard
	}
	if !method.Valid() {
		return nil, apperror.Validation("payment_method", "payment method must be one of credit_card, paypal, cash")
	}

	// 2. load the property
	p, err := loadProperty(ctx, s.uow.Stores(), in.PropertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable {
		return nil, notAccepting(p.ID)
	}
	if in.GuestCount > p.GuestCapacity {
		return nil, apperror.Validation("guest_count", "property accommodates at most %d guests", p.GuestCapacity)
	}
	if p.HostID == in.GuestID {
		return nil, apperror.Forbidden("hosts cannot book their own property")
	}

	var created *reservations.Reservation
	err = s.uow.WithPropertyLock(ctx, p.ID, func(st Stores) error {
		// 3. last availability check before the write
		ov, err := checkRange(ctx, st, p.ID, checkIn, checkOut)
		if err != nil {
			return err
		}

		// 4. minimum stay
		nights := calendar.Nights(checkIn, checkOut)
		if d, bad := ov.MinimumStayViolation(checkIn, checkOut); bad {
			return apperror.Validation("check_out",
				"%s requires a minimum stay of %d nights, requested %d",
				calendar.Key(d.Date), d.MinimumStay, nights)
		}

		// 5. price from the same snapshot
		q := BuildQuote(p, ov, checkIn, checkOut)

		// 6. initial status
		status, payment := InitialStatus(p, method)

		r := &reservations.Reservation{
			ID:              uuid.New(),
			PropertyID:      p.ID,
			GuestID:         in.GuestID,
			HostID:          p.HostID,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			GuestCount:      in.GuestCount,
			TotalPriceCents: q.TotalCents,
			Status:          status,
			PaymentStatus:   payment,
			PaymentMethod:   method,
			SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		}
		r.Code = s.newCode(r.ID)

		// 7. commit
		if err := st.Reservations.Create(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		if errors.Is(err, reservations.ErrOverlap) {
			return nil, commitOverlapError(checkIn, checkOut)
		}
		var ae *apperror.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperror.Dependency(err, "could not save reservation")
	}

	// 8. side effects after commit
	s.invalidate(ctx, p.ID)
	s.publish(ctx, EventReservationCreated, created, "")

	s.logger.Infow("reservation created",
		"reservation_id", created.ID,
		"property_id", created.PropertyID,
		"status", created.Status,
		"total_cents", created.TotalPriceCents,
	)
	return created, nil
}
