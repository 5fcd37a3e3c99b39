package calendar

import (
	"time"

	"nawartu/internal/apperror"
)

func ValidateDate(field string, t time.Time) error {
	if t.IsZero() {
		return apperror.Validation(field, "%s is not a valid date", field)
	}
	return nil
}

// ValidateRange checks a stay is at least one night long.
func ValidateRange(checkIn, checkOut time.Time) error {
	if err := ValidateDate("check_in", checkIn); err != nil {
		return err
	}
	if err := ValidateDate("check_out", checkOut); err != nil {
		return err
	}
	if !DateOf(checkOut).After(DateOf(checkIn)) {
		return apperror.Validation("check_out", "check-out date must be after check-in date")
	}
	return nil
}

func ValidateFields(f Fields) error {
	if f.CustomPriceCents != nil && *f.CustomPriceCents < 0 {
		return apperror.Validation("custom_price", "custom price cannot be negative")
	}
	if f.MinimumStay != nil && *f.MinimumStay < 1 {
		return apperror.Validation("minimum_stay", "minimum stay must be at least 1 night")
	}
	if f.BlockedReason != nil && !f.BlockedReason.Valid() {
		return apperror.Validation("blocked_reason", "blocked reason must be one of maintenance, personal_use, other")
	}
	return nil
}

// ValidateChanges validates a batch before anything is written.
func ValidateChanges(changes []Change) error {
	if len(changes) == 0 {
		return apperror.Validation("dates", "at least one date is required")
	}
	for _, c := range changes {
		if err := ValidateDate("date", c.Date); err != nil {
			return err
		}
		if err := ValidateFields(c.Fields); err != nil {
			return err
		}
	}
	return nil
}
