package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, statuses []Status) ([]Reservation, error)
	// UpdateStatus moves a reservation from -> to only if it is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, reason string) (*Reservation, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Reservation, error)
	AttachReview(ctx context.Context, id uuid.UUID, review Review) (*Reservation, error)
	List(ctx context.Context, f Filter) ([]Reservation, error)
	Count(ctx context.Context, f Filter) (int, error)
	// ReviewSummary returns the average rating and number of reviews across a
	// property's reservations.
	ReviewSummary(ctx context.Context, propertyID uuid.UUID) (float64, int, error)
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

const reservationColumns = `id, code, property_id, guest_id, host_id, check_in, check_out,
	guest_count, total_price_cents, status, payment_status, payment_method,
	special_requests, cancellation_reason, review_rating, review_comment, review_date,
	created_at, updated_at`

func (r *Repository) Create(ctx context.Context, res *Reservation) error {
	if err := Validate(res); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO reservations (
			id, code, property_id, guest_id, host_id, check_in, check_out,
			guest_count, total_price_cents, status, payment_status, payment_method,
			special_requests
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	err := r.q.QueryRow(ctx, query,
		res.ID,
		res.Code,
		res.PropertyID,
		res.GuestID,
		res.HostID,
		res.CheckIn,
		res.CheckOut,
		res.GuestCount,
		res.TotalPriceCents,
		string(res.Status),
		string(res.PaymentStatus),
		string(res.PaymentMethod),
		res.SpecialRequests,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return translateWriteError(err)
	}
	return nil
}

// translateWriteError maps constraint violations onto domain errors.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return ErrOverlap
		case pgerrcode.CheckViolation:
			return apperror.Validation("reservation", "reservation violates %s", pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return apperror.NotFound("referenced property or user does not exist")
		case pgerrcode.UniqueViolation:
			return apperror.Conflict("confirmation code already in use")
		}
	}
	return fmt.Errorf("insert reservation: %w", err)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *Repository) FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, statuses []Status) ([]Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE property_id = $1
		  AND check_in < $3
		  AND check_out > $2
		  AND status = ANY($4)
		ORDER BY check_in`

	rows, err := r.q.Query(ctx, query, propertyID, checkIn, checkOut, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("query overlapping reservations: %w", err)
	}
	return collect(rows)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, reason string) (*Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE reservations
		SET status = $3,
		    cancellation_reason = CASE WHEN $3 = 'cancelled' THEN $4 ELSE cancellation_reason END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.q.QueryRow(ctx, query, id, string(from), string(to), strings.TrimSpace(reason)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missOrChanged(ctx, id)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	return res, nil
}

// missOrChanged tells apart a missing row from a lost compare-and-set.
func (r *Repository) missOrChanged(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check reservation: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func (r *Repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE reservations SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set payment status: %w", err)
	}
	return res, nil
}

func (r *Repository) AttachReview(ctx context.Context, id uuid.UUID, review Review) (*Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE reservations
		SET review_rating = $2, review_comment = $3, review_date = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'completed' AND review_rating IS NULL
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.q.QueryRow(ctx, query, id, review.Rating, review.Comment, review.Date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missOrChanged(ctx, id)
		}
		return nil, fmt.Errorf("attach review: %w", err)
	}
	return res, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where, args := f.where()
	query := `SELECT ` + reservationColumns + ` FROM reservations` + where + ` ORDER BY check_in DESC, created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collect(rows)
}

func (r *Repository) Count(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where, args := f.where()
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}

func (r *Repository) ReviewSummary(ctx context.Context, propertyID uuid.UUID) (float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT COALESCE(AVG(review_rating), 0)::float8, COUNT(review_rating)
		FROM reservations
		WHERE property_id = $1 AND review_rating IS NOT NULL`

	var avg float64
	var count int
	if err := r.q.QueryRow(ctx, query, propertyID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("review summary: %w", err)
	}
	return avg, count, nil
}

// where renders the filter as a SQL WHERE clause with positional args.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.PropertyID != uuid.Nil {
		add("property_id = $%d", f.PropertyID)
	}
	if f.HostID != uuid.Nil {
		add("host_id = $%d", f.HostID)
	}
	if len(f.Statuses) > 0 {
		add("status = ANY($%d)", statusStrings(f.Statuses))
	}
	if !f.CheckInFrom.IsZero() {
		add("check_in >= $%d", f.CheckInFrom)
	}
	if !f.CheckOutTo.IsZero() {
		add("check_out <= $%d", f.CheckOutTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collect(rows pgx.Rows) ([]Reservation, error) {
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		res                                  Reservation
		status, paymentStatus, paymentMethod string
		rating                               *int
		comment                              *string
		reviewDate                           *time.Time
	)
	if err := row.Scan(
		&res.ID,
		&res.Code,
		&res.PropertyID,
		&res.GuestID,
		&res.HostID,
		&res.CheckIn,
		&res.CheckOut,
		&res.GuestCount,
		&res.TotalPriceCents,
		&status,
		&paymentStatus,
		&paymentMethod,
		&res.SpecialRequests,
		&res.CancellationReason,
		&rating,
		&comment,
		&reviewDate,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.Status = Status(status)
	res.PaymentStatus = PaymentStatus(paymentStatus)
	res.PaymentMethod = PaymentMethod(paymentMethod)
	if rating != nil {
		rv := &Review{Rating: *rating}
		if comment != nil {
			rv.Comment = *comment
		}
		if reviewDate != nil {
			rv.Date = *reviewDate
		}
		res.Review = rv
	}
	return &res, nil
}
