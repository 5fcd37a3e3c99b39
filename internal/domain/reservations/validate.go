package reservations

import (
	"strings"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Validate checks the fields a reservation must carry before it is written.
func Validate(r *Reservation) error {
	if err := calendar.ValidateRange(r.CheckIn, r.CheckOut); err != nil {
		return err
	}
	if r.GuestCount < 1 {
		return apperror.Validation("guest_count", "guest count must be at least 1")
	}
	if r.TotalPriceCents < 0 {
		return apperror.Validation("total_price_cents", "total price must not be negative")
	}
	if !r.Status.Valid() {
		return apperror.Validation("status", "unknown status %q", r.Status)
	}
	if !r.PaymentStatus.Valid() {
		return apperror.Validation("payment_status", "unknown payment status %q", r.PaymentStatus)
	}
	if !r.PaymentMethod.Valid() {
		return apperror.Validation("payment_method", "unknown payment method %q", r.PaymentMethod)
	}
	return nil
}

// CheckReview validates a review about to be attached to r.
func CheckReview(r *Reservation, rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return apperror.Validation("rating", "rating must be between %d and %d", MinRating, MaxRating)
	}
	if len(strings.TrimSpace(comment)) > 1000 {
		return apperror.Validation("comment", "comment must be at most 1000 characters")
	}
	if r.Status != StatusCompleted {
		return apperror.Conflict("only completed stays can be reviewed")
	}
	if r.Review != nil {
		return apperror.Conflict("reservation already has a review")
	}
	return nil
}
