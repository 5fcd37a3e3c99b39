package storage

import (
	"context"
	"fmt"

	"nawartu/internal/booking"
	"nawartu/internal/database"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/pushtokens"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/domain/users"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool         *pgxpool.Pool // IMPORTANT: set the pool so WithPropertyLock works
	Properties   properties.Store
	Calendar     calendar.Store
	Reservations reservations.Store
	PushTokens   pushtokens.Store
	Users        users.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:         db,
		Properties:   properties.NewRepository(db),
		Calendar:     calendar.NewRepository(db),
		Reservations: reservations.NewRepository(db),
		PushTokens:   pushtokens.NewRepository(db),
		Users:        users.NewRepository(db),
	}
}

func (c *Container) Stores() booking.Stores {
	return booking.Stores{
		Properties:   c.Properties,
		Calendar:     c.Calendar,
		Reservations: c.Reservations,
	}
}

// lockPropertySQL takes a transaction-scoped advisory lock keyed by the
// property id. It is released on commit or rollback.
const lockPropertySQL = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

// WithPropertyLock runs fn in one transaction holding the property's advisory
// lock, with tx-scoped repositories. fn's error rolls everything back.
func (c *Container) WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(s booking.Stores) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	return database.WithTx(c.pool, ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockPropertySQL, propertyID.String()); err != nil {
			return fmt.Errorf("lock property %s: %w", propertyID, err)
		}
		return fn(booking.Stores{
			Properties:   properties.NewRepository(tx),
			Calendar:     calendar.NewRepository(tx),
			Reservations: reservations.NewRepository(tx),
		})
	})
}
