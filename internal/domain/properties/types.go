package properties

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("property not found")
	QueryTimeoutDuration = time.Second * 5
)

// Property is the listing a reservation is made against. The core only reads
// it, apart from the base price and the aggregated rating.
type Property struct {
	ID              uuid.UUID `json:"id"`
	HostID          uuid.UUID `json:"host_id"`
	Title           string    `json:"title"`
	Neighborhood    string    `json:"neighborhood"`
	PropertyType    string    `json:"property_type"`
	BasePriceCents  int64     `json:"base_price_cents"`
	GuestCapacity   int       `json:"guest_capacity"`
	IsAvailable     bool      `json:"is_available"`
	InstantBookable bool      `json:"instant_bookable"`
	RatingAverage   float64   `json:"rating_average"`
	RatingCount     int       `json:"rating_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID is the property's host.
func (p *Property) OwnedBy(userID uuid.UUID) bool {
	return p != nil && p.HostID == userID
}
