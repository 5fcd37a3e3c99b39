package reservations

import (
	"strings"
	"time"

	"nawartu/internal/apperror"
)

// edges lists every legal status change and the roles allowed to make it.
var edges = map[Status]map[Status][]Role{
	StatusPending: {
		StatusConfirmed: {RoleHost, RoleSystem},
		StatusCancelled: {RoleGuest, RoleHost, RoleSystem},
	},
	StatusConfirmed: {
		StatusCancelled: {RoleGuest, RoleHost, RoleSystem},
		StatusCompleted: {RoleSystem, RoleAdmin},
	},
}

// CanTransition reports whether the state machine has an edge from -> to,
// regardless of who asks.
func CanTransition(from, to Status) bool {
	_, ok := edges[from][to]
	return ok
}

// CheckTransition validates a status change of r requested by actor. Guests
// and hosts may only act on their own reservations. now is used to decide
// whether a stay has ended.
func CheckTransition(r *Reservation, to Status, actor Actor, reason string, now time.Time) error {
	if !to.Valid() {
		return apperror.Validation("status", "unknown status %q", to)
	}
	if r.Status.Terminal() {
		return apperror.Conflict("reservation is already %s", r.Status)
	}
	roles, ok := edges[r.Status][to]
	if !ok {
		return apperror.Conflict("cannot change reservation from %s to %s", r.Status, to)
	}
	if !roleAllowed(roles, actor.Role) {
		return apperror.Forbidden("%s may not change a reservation to %s", actorName(actor.Role), to)
	}
	switch actor.Role {
	case RoleGuest:
		if actor.UserID != r.GuestID {
			return apperror.Forbidden("reservation belongs to another guest")
		}
	case RoleHost:
		if actor.UserID != r.HostID {
			return apperror.Forbidden("reservation belongs to another host")
		}
	}
	if to == StatusCancelled && strings.TrimSpace(reason) == "" {
		return apperror.Validation("cancellation_reason", "cancellation reason is required")
	}
	if to == StatusCompleted && now.Before(r.CheckOut) {
		return apperror.Conflict("stay has not ended yet (check-out %s)", r.CheckOut.Format("2006-01-02"))
	}
	return nil
}

func roleAllowed(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func actorName(r Role) string {
	if r == "" {
		return "anonymous caller"
	}
	return string(r)
}

// Apply returns a copy of r moved to status to. It does not validate.
func Apply(r Reservation, to Status, reason string, now time.Time) Reservation {
	r.Status = to
	if to == StatusCancelled {
		r.CancellationReason = strings.TrimSpace(reason)
	}
	r.UpdatedAt = now
	return r
}
