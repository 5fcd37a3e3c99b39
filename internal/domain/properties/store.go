package properties

import (
	"context"
	"errors"
	"fmt"

	"nawartu/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	UpdateBasePrice(ctx context.Context, id uuid.UUID, priceCents int64) error
	ListSimilar(ctx context.Context, p *Property, limit int) ([]Property, error)
	CountByHost(ctx context.Context, hostID uuid.UUID) (int, error)
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

const propertyColumns = `id, host_id, title, neighborhood, property_type, base_price_cents,
	guest_capacity, is_available, instant_bookable, rating_average, rating_count,
	created_at, updated_at`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateBasePrice(ctx context.Context, id uuid.UUID, priceCents int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := r.q.Exec(ctx, `UPDATE properties SET base_price_cents = $1, updated_at = NOW() WHERE id = $2`, priceCents, id)
	if err != nil {
		return fmt.Errorf("update base price: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSimilar returns other listings in the same neighborhood with the same
// type and guest capacity, used for market price comparison.
func (r *Repository) ListSimilar(ctx context.Context, p *Property, limit int) ([]Property, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE neighborhood = $1 AND property_type = $2 AND guest_capacity = $3 AND id <> $4
		ORDER BY created_at DESC
		LIMIT $5`

	rows, err := r.q.Query(ctx, query, p.Neighborhood, p.PropertyType, p.GuestCapacity, p.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		sp, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

func (r *Repository) CountByHost(ctx context.Context, hostID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE host_id = $1`, hostID).Scan(&n)
	return n, err
}

func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := r.q.Exec(ctx, `
		UPDATE properties
		SET rating_average = $1, rating_count = $2, updated_at = NOW()
		WHERE id = $3`, average, count, id)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	err := row.Scan(
		&p.ID,
		&p.HostID,
		&p.Title,
		&p.Neighborhood,
		&p.PropertyType,
		&p.BasePriceCents,
		&p.GuestCapacity,
		&p.IsAvailable,
		&p.InstantBookable,
		&p.RatingAverage,
		&p.RatingCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
