package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
)

func cloneReservation(r reservations.Reservation) reservations.Reservation {
	if r.Review != nil {
		rv := *r.Review
		r.Review = &rv
	}
	return r
}

type reservationStore struct {
	*Store
}

// Create rejects a reservation that overlaps an active one on the same
// property, mirroring the database exclusion constraint.
func (s *reservationStore) Create(_ context.Context, r *reservations.Reservation) error {
	if err := reservations.Validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Status.Active() {
		for _, other := range s.reservations {
			if other.PropertyID == r.PropertyID && other.Status.Active() && other.Overlaps(r.CheckIn, r.CheckOut) {
				return reservations.ErrOverlap
			}
		}
	}

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	s.reservations[r.ID] = cloneReservation(*r)
	return nil
}

func (s *reservationStore) GetByID(_ context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservations.ErrNotFound
	}
	r = cloneReservation(r)
	return &r, nil
}

func (s *reservationStore) FindOverlapping(_ context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, statuses []reservations.Status) ([]reservations.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := reservations.Filter{PropertyID: propertyID, Statuses: statuses}
	var out []reservations.Reservation
	for _, r := range s.reservations {
		if f.Match(&r) && r.Overlaps(checkIn, checkOut) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (s *reservationStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to reservations.Status, reason string) (*reservations.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservations.ErrNotFound
	}
	if r.Status != from {
		return nil, reservations.ErrStatusChanged
	}
	r = reservations.Apply(r, to, reason, s.now())
	s.reservations[id] = r

	out := cloneReservation(r)
	return &out, nil
}

func (s *reservationStore) SetPaymentStatus(_ context.Context, id uuid.UUID, status reservations.PaymentStatus) (*reservations.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservations.ErrNotFound
	}
	r.PaymentStatus = status
	r.UpdatedAt = s.now()
	s.reservations[id] = r

	out := cloneReservation(r)
	return &out, nil
}

func (s *reservationStore) AttachReview(_ context.Context, id uuid.UUID, review reservations.Review) (*reservations.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservations.ErrNotFound
	}
	if r.Status != reservations.StatusCompleted || r.Review != nil {
		return nil, reservations.ErrStatusChanged
	}
	review.Comment = strings.TrimSpace(review.Comment)
	r.Review = &review
	r.UpdatedAt = s.now()
	s.reservations[id] = r

	out := cloneReservation(r)
	return &out, nil
}

func (s *reservationStore) List(_ context.Context, f reservations.Filter) ([]reservations.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.matchLocked(f)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.After(out[j].CheckIn)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *reservationStore) Count(_ context.Context, f reservations.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matchLocked(f)), nil
}

func (s *reservationStore) ReviewSummary(_ context.Context, propertyID uuid.UUID) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, count := 0, 0
	for _, r := range s.reservations {
		if r.PropertyID != propertyID || r.Review == nil {
			continue
		}
		sum += r.Review.Rating
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (s *reservationStore) matchLocked(f reservations.Filter) []reservations.Reservation {
	var out []reservations.Reservation
	for _, r := range s.reservations {
		if f.Match(&r) {
			out = append(out, cloneReservation(r))
		}
	}
	return out
}
