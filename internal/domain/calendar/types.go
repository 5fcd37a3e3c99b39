package calendar

import (
	"time"

	"github.com/google/uuid"
)

type BlockReason string

const (
	ReasonMaintenance BlockReason = "maintenance"
	ReasonPersonalUse BlockReason = "personal_use"
	ReasonOther       BlockReason = "other"
)

func (r BlockReason) Valid() bool {
	switch r {
	case ReasonMaintenance, ReasonPersonalUse, ReasonOther:
		return true
	}
	return false
}

// Day is an explicit override for one property on one date. Dates without a
// Day are open, priced at the property's base price, with a minimum stay of 1.
type Day struct {
	PropertyID       uuid.UUID   `json:"property_id"`
	Date             time.Time   `json:"date"`
	IsAvailable      bool        `json:"is_available"`
	IsBlocked        bool        `json:"is_blocked"`
	BlockedReason    BlockReason `json:"blocked_reason"`
	CustomPriceCents *int64      `json:"custom_price_cents,omitempty"`
	MinimumStay      int         `json:"minimum_stay"`
	Notes            string      `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewDay returns the record a date gets when it is first written.
func NewDay(propertyID uuid.UUID, date time.Time) Day {
	return Day{
		PropertyID:    propertyID,
		Date:          DateOf(date),
		IsAvailable:   true,
		BlockedReason: ReasonOther,
		MinimumStay:   1,
	}
}

// Closed reports whether the date cannot be booked.
func (d Day) Closed() bool {
	return !d.IsAvailable || d.IsBlocked
}

// Fields is a partial update. Nil members keep the stored value, or the
// default when the record is being created.
type Fields struct {
	IsAvailable      *bool        `json:"is_available,omitempty"`
	IsBlocked        *bool        `json:"is_blocked,omitempty"`
	BlockedReason    *BlockReason `json:"blocked_reason,omitempty"`
	CustomPriceCents *int64       `json:"custom_price_cents,omitempty"`
	ClearCustomPrice bool         `json:"clear_custom_price,omitempty"`
	MinimumStay      *int         `json:"minimum_stay,omitempty"`
	Notes            *string      `json:"notes,omitempty"`
}

// Apply returns d with f applied. Applying the same Fields twice is a no-op
// the second time.
func (f Fields) Apply(d Day) Day {
	if f.IsAvailable != nil {
		d.IsAvailable = *f.IsAvailable
	}
	if f.IsBlocked != nil {
		d.IsBlocked = *f.IsBlocked
	}
	if f.BlockedReason != nil {
		d.BlockedReason = *f.BlockedReason
	}
	if f.ClearCustomPrice {
		d.CustomPriceCents = nil
	} else if f.CustomPriceCents != nil {
		p := *f.CustomPriceCents
		d.CustomPriceCents = &p
	}
	if f.MinimumStay != nil {
		d.MinimumStay = *f.MinimumStay
	}
	if f.Notes != nil {
		d.Notes = *f.Notes
	}
	return d
}

// Change pairs a date with the fields to write on it.
type Change struct {
	Date   time.Time
	Fields Fields
}

// Overrides indexes explicit records by date. Lookup distinguishes a missing
// record from one that merely holds default values.
type Overrides map[string]Day

func NewOverrides(days []Day) Overrides {
	o := make(Overrides, len(days))
	for _, d := range days {
		o[Key(d.Date)] = d
	}
	return o
}

func (o Overrides) Lookup(date time.Time) (Day, bool) {
	d, ok := o[Key(date)]
	return d, ok
}

// FirstClosed returns the earliest closed date in [checkIn, checkOut).
func (o Overrides) FirstClosed(checkIn, checkOut time.Time) (Day, bool) {
	for _, date := range Dates(checkIn, checkOut) {
		if d, ok := o.Lookup(date); ok && d.Closed() {
			return d, true
		}
	}
	return Day{}, false
}

// MinimumStayViolation returns the earliest date in [checkIn, checkOut) whose
// explicit minimum stay exceeds the number of nights booked.
func (o Overrides) MinimumStayViolation(checkIn, checkOut time.Time) (Day, bool) {
	nights := Nights(checkIn, checkOut)
	for _, date := range Dates(checkIn, checkOut) {
		if d, ok := o.Lookup(date); ok && d.MinimumStay > nights {
			return d, true
		}
	}
	return Day{}, false
}
