package calendar

import (
	"testing"
	"time"

	"nawartu/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(date("2024-06-01"), date("2024-06-02")))

	err := ValidateRange(date("2024-06-01"), date("2024-06-01"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = ValidateRange(time.Time{}, date("2024-06-01"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestValidateFields(t *testing.T) {
	assert.NoError(t, ValidateFields(Fields{CustomPriceCents: ptr(int64(0))}))

	tests := []struct {
		name  string
		f     Fields
		field string
	}{
		{"negative price", Fields{CustomPriceCents: ptr(int64(-1))}, "custom_price"},
		{"zero minimum stay", Fields{MinimumStay: ptr(0)}, "minimum_stay"},
		{"unknown reason", Fields{BlockedReason: ptr(BlockReason("vacation"))}, "blocked_reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.f)
			var ae *apperror.Error
			if assert.ErrorAs(t, err, &ae) {
				assert.Equal(t, tt.field, ae.Field)
			}
		})
	}
}

func TestValidateChanges(t *testing.T) {
	assert.Error(t, ValidateChanges(nil))
	assert.Error(t, ValidateChanges([]Change{{Date: time.Time{}}}))
	assert.NoError(t, ValidateChanges([]Change{{Date: date("2024-06-01")}}))
}
