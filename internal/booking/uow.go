package booking

import (
	"context"

	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

// Stores is the set of repositories the booking core reads and writes.
type Stores struct {
	Properties   properties.Store
	Calendar     calendar.Store
	Reservations reservations.Store
}

// UnitOfWork hands out stores. WithPropertyLock runs fn with every other
// WithPropertyLock call for the same property excluded, and commits fn's
// writes only when fn returns nil.
type UnitOfWork interface {
	Stores() Stores
	WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(s Stores) error) error
}
