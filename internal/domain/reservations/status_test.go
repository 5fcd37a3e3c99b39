package reservations

import (
	"testing"
	"time"

	"nawartu/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation(status Status) *Reservation {
	return &Reservation{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		GuestID:    uuid.New(),
		HostID:     uuid.New(),
		CheckIn:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
		Status:     status,
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))

	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
}

func TestCheckTransition(t *testing.T) {
	afterStay := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	duringStay := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		from   Status
		to     Status
		actor  func(r *Reservation) Actor
		reason string
		now    time.Time
		kind   apperror.Kind
	}{
		{
			name:  "host confirms pending",
			from:  StatusPending,
			to:    StatusConfirmed,
			actor: func(r *Reservation) Actor { return Actor{Role: RoleHost, UserID: r.HostID} },
			now:   duringStay,
		},
		{
			name:  "system confirms after payment",
			from:  StatusPending,
			to:    StatusConfirmed,
			actor: func(*Reservation) Actor { return SystemActor },
			now:   duringStay,
		},
		{
			name:  "guest cannot confirm",
			from:  StatusPending,
			to:    StatusConfirmed,
			actor: func(r *Reservation) Actor { return Actor{Role: RoleGuest, UserID: r.GuestID} },
			now:   duringStay,
			kind:  apperror.KindForbidden,
		},
		{
			name:  "other host cannot confirm",
			from:  StatusPending,
			to:    StatusConfirmed,
			actor: func(*Reservation) Actor { return Actor{Role: RoleHost, UserID: uuid.New()} },
			now:   duringStay,
			kind:  apperror.KindForbidden,
		},
		{
			name:   "guest cancels with reason",
			from:   StatusConfirmed,
			to:     StatusCancelled,
			actor:  func(r *Reservation) Actor { return Actor{Role: RoleGuest, UserID: r.GuestID} },
			reason: "plans changed",
			now:    duringStay,
		},
		{
			name:   "cancel requires reason",
			from:   StatusPending,
			to:     StatusCancelled,
			actor:  func(r *Reservation) Actor { return Actor{Role: RoleGuest, UserID: r.GuestID} },
			reason: "   ",
			now:    duringStay,
			kind:   apperror.KindValidation,
		},
		{
			name:  "confirmed cannot go back to pending",
			from:  StatusConfirmed,
			to:    StatusPending,
			actor: func(r *Reservation) Actor { return Actor{Role: RoleHost, UserID: r.HostID} },
			now:   duringStay,
			kind:  apperror.KindConflict,
		},
		{
			name:   "cancelled is terminal",
			from:   StatusCancelled,
			to:     StatusCancelled,
			actor:  func(*Reservation) Actor { return SystemActor },
			reason: "again",
			now:    duringStay,
			kind:   apperror.KindConflict,
		},
		{
			name:  "completion waits for checkout",
			from:  StatusConfirmed,
			to:    StatusCompleted,
			actor: func(*Reservation) Actor { return SystemActor },
			now:   duringStay,
			kind:  apperror.KindConflict,
		},
		{
			name:  "system completes after checkout",
			from:  StatusConfirmed,
			to:    StatusCompleted,
			actor: func(*Reservation) Actor { return SystemActor },
			now:   afterStay,
		},
		{
			name:  "host cannot complete",
			from:  StatusConfirmed,
			to:    StatusCompleted,
			actor: func(r *Reservation) Actor { return Actor{Role: RoleHost, UserID: r.HostID} },
			now:   afterStay,
			kind:  apperror.KindForbidden,
		},
		{
			name:  "unknown status",
			from:  StatusPending,
			to:    Status("archived"),
			actor: func(*Reservation) Actor { return SystemActor },
			now:   duringStay,
			kind:  apperror.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReservation(tt.from)
			err := CheckTransition(r, tt.to, tt.actor(r), tt.reason, tt.now)
			if tt.kind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestApplyRecordsCancellationReason(t *testing.T) {
	now := time.Now()
	r := Apply(*newReservation(StatusPending), StatusCancelled, "  host unavailable ", now)

	assert.Equal(t, StatusCancelled, r.Status)
	assert.Equal(t, "host unavailable", r.CancellationReason)
	assert.Equal(t, now, r.UpdatedAt)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	r := newReservation(StatusConfirmed)

	assert.True(t, r.Overlaps(r.CheckIn, r.CheckOut))
	assert.True(t, r.Overlaps(r.CheckIn.AddDate(0, 0, 2), r.CheckOut.AddDate(0, 0, 2)))
	assert.False(t, r.Overlaps(r.CheckOut, r.CheckOut.AddDate(0, 0, 3)))
	assert.False(t, r.Overlaps(r.CheckIn.AddDate(0, 0, -2), r.CheckIn))
}

func TestCheckReview(t *testing.T) {
	r := newReservation(StatusConfirmed)
	assert.True(t, apperror.Is(CheckReview(r, 5, "great"), apperror.KindConflict))

	r.Status = StatusCompleted
	require.NoError(t, CheckReview(r, 5, "great"))
	assert.True(t, apperror.Is(CheckReview(r, 0, ""), apperror.KindValidation))
	assert.True(t, apperror.Is(CheckReview(r, 6, ""), apperror.KindValidation))

	r.Review = &Review{Rating: 4}
	assert.True(t, apperror.Is(CheckReview(r, 5, "again"), apperror.KindConflict))
}
