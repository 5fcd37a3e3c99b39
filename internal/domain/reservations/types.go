package reservations

import (
	"errors"
	"time"

	"nawartu/internal/domain/calendar"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("reservation not found")
	// ErrOverlap is returned by Create when storage rejects the row because an
	// active reservation already holds part of the range.
	ErrOverlap = errors.New("reservation overlaps an active reservation")
	// ErrStatusChanged is returned when a compare-and-set transition finds a
	// different status than the one it read.
	ErrStatusChanged     = errors.New("reservation status changed concurrently")
	QueryTimeoutDuration = time.Second * 5
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the statuses that hold dates on the calendar.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodPaypal     PaymentMethod = "paypal"
	MethodCash       PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodPaypal, MethodCash:
		return true
	}
	return false
}

type Review struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

type Reservation struct {
	ID                 uuid.UUID     `json:"id"`
	Code               string        `json:"code"`
	PropertyID         uuid.UUID     `json:"property_id"`
	GuestID            uuid.UUID     `json:"guest_id"`
	HostID             uuid.UUID     `json:"host_id"`
	CheckIn            time.Time     `json:"check_in"`
	CheckOut           time.Time     `json:"check_out"`
	GuestCount         int           `json:"guest_count"`
	TotalPriceCents    int64         `json:"total_price_cents"`
	Status             Status        `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	SpecialRequests    string        `json:"special_requests,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	Review             *Review       `json:"review,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Overlaps reports whether r holds any night of [checkIn, checkOut).
// Back-to-back stays that share a boundary date do not overlap.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && r.CheckOut.After(checkIn)
}

// Nights is the number of nights booked, rounding a partial day up.
func (r *Reservation) Nights() int {
	return calendar.Nights(r.CheckIn, r.CheckOut)
}

// Role identifies who is driving a status change.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleHost   Role = "host"
	RoleSystem Role = "system"
	RoleAdmin  Role = "admin"
)

type Actor struct {
	Role   Role
	UserID uuid.UUID
}

var SystemActor = Actor{Role: RoleSystem}

// Scope selects the reservations aggregated into Stats. Exactly one of the
// ids is set.
type Scope struct {
	PropertyID uuid.UUID
	HostID     uuid.UUID
}

// Filter narrows List queries. Zero values are ignored.
type Filter struct {
	PropertyID uuid.UUID
	HostID     uuid.UUID
	Statuses   []Status
	// CheckInFrom and CheckOutTo bound the stay: CheckIn >= CheckInFrom and
	// CheckOut <= CheckOutTo.
	CheckInFrom time.Time
	CheckOutTo  time.Time
	Limit       int
	Offset      int
}

func (f Filter) Match(r *Reservation) bool {
	if f.PropertyID != uuid.Nil && r.PropertyID != f.PropertyID {
		return false
	}
	if f.HostID != uuid.Nil && r.HostID != f.HostID {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if !f.CheckInFrom.IsZero() && r.CheckIn.Before(f.CheckInFrom) {
		return false
	}
	if !f.CheckOutTo.IsZero() && r.CheckOut.After(f.CheckOutTo) {
		return false
	}
	return true
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func statusStrings(list []Status) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}
