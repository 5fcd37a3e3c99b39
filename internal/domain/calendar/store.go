package calendar

import (
	"context"
	"fmt"
	"time"

	"nawartu/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var QueryTimeoutDuration = time.Second * 5

type Store interface {
	GetOverridesInRange(ctx context.Context, propertyID uuid.UUID, start, endExclusive time.Time) ([]Day, error)
	UpsertOverride(ctx context.Context, propertyID uuid.UUID, date time.Time, f Fields) (*Day, error)
	BulkUpsert(ctx context.Context, propertyID uuid.UUID, dates []time.Time, f Fields) ([]Day, error)
	ApplyChanges(ctx context.Context, propertyID uuid.UUID, changes []Change) ([]Day, error)
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

const dayColumns = `property_id, date, is_available, is_blocked, blocked_reason,
	custom_price_cents, minimum_stay, notes, created_at, updated_at`

// upsertSQL keeps the stored value for every nil parameter, so replaying the
// same statement leaves the row unchanged apart from updated_at.
const upsertSQL = `
	INSERT INTO calendar_days (
		property_id, date, is_available, is_blocked, blocked_reason,
		custom_price_cents, minimum_stay, notes
	) VALUES (
		$1, $2,
		COALESCE($3::boolean, TRUE),
		COALESCE($4::boolean, FALSE),
		COALESCE($5::text, 'other'),
		CASE WHEN $7::boolean THEN NULL ELSE $6::bigint END,
		COALESCE($8::int, 1),
		COALESCE($9::text, '')
	)
	ON CONFLICT (property_id, date) DO UPDATE SET
		is_available       = COALESCE($3::boolean, calendar_days.is_available),
		is_blocked         = COALESCE($4::boolean, calendar_days.is_blocked),
		blocked_reason     = COALESCE($5::text, calendar_days.blocked_reason),
		custom_price_cents = CASE WHEN $7::boolean THEN NULL
		                          ELSE COALESCE($6::bigint, calendar_days.custom_price_cents) END,
		minimum_stay       = COALESCE($8::int, calendar_days.minimum_stay),
		notes              = COALESCE($9::text, calendar_days.notes),
		updated_at         = NOW()
	RETURNING ` + dayColumns

func upsertArgs(propertyID uuid.UUID, date time.Time, f Fields) []any {
	var reason *string
	if f.BlockedReason != nil {
		s := string(*f.BlockedReason)
		reason = &s
	}
	return []any{
		propertyID,
		DateOf(date),
		f.IsAvailable,
		f.IsBlocked,
		reason,
		f.CustomPriceCents,
		f.ClearCustomPrice,
		f.MinimumStay,
		f.Notes,
	}
}

func (r *Repository) GetOverridesInRange(ctx context.Context, propertyID uuid.UUID, start, endExclusive time.Time) ([]Day, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + dayColumns + `
		FROM calendar_days
		WHERE property_id = $1 AND date >= $2 AND date < $3
		ORDER BY date`

	rows, err := r.q.Query(ctx, query, propertyID, DateOf(start), DateOf(endExclusive))
	if err != nil {
		return nil, fmt.Errorf("query calendar overrides: %w", err)
	}
	defer rows.Close()

	var out []Day
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertOverride(ctx context.Context, propertyID uuid.UUID, date time.Time, f Fields) (*Day, error) {
	if err := ValidateDate("date", date); err != nil {
		return nil, err
	}
	if err := ValidateFields(f); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	d, err := scanDay(r.q.QueryRow(ctx, upsertSQL, upsertArgs(propertyID, date, f)...))
	if err != nil {
		return nil, fmt.Errorf("upsert calendar day %s: %w", Key(date), err)
	}
	return d, nil
}

func (r *Repository) BulkUpsert(ctx context.Context, propertyID uuid.UUID, dates []time.Time, f Fields) ([]Day, error) {
	changes := make([]Change, 0, len(dates))
	for _, d := range dates {
		changes = append(changes, Change{Date: d, Fields: f})
	}
	return r.ApplyChanges(ctx, propertyID, changes)
}

// ApplyChanges writes every change in one transaction using a single batch
// round-trip. Any failure rolls back all dates.
func (r *Repository) ApplyChanges(ctx context.Context, propertyID uuid.UUID, changes []Change) ([]Day, error) {
	if err := ValidateChanges(changes); err != nil {
		return nil, err
	}

	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(upsertSQL, upsertArgs(propertyID, c.Date, c.Fields)...)
	}

	br := tx.SendBatch(ctx, batch)
	out := make([]Day, 0, len(changes))
	for i, c := range changes {
		d, err := scanDay(br.QueryRow())
		if err != nil {
			br.Close()
			return nil, fmt.Errorf("batch upsert day[%d] %s: %w", i, Key(c.Date), err)
		}
		out = append(out, *d)
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit calendar batch: %w", err)
	}
	return out, nil
}

func scanDay(row pgx.Row) (*Day, error) {
	var d Day
	var reason string
	if err := row.Scan(
		&d.PropertyID,
		&d.Date,
		&d.IsAvailable,
		&d.IsBlocked,
		&reason,
		&d.CustomPriceCents,
		&d.MinimumStay,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.BlockedReason = BlockReason(reason)
	d.Date = DateOf(d.Date)
	return &d, nil
}
