package memstore

import (
	"context"
	"sort"

	"nawartu/internal/domain/properties"

	"github.com/google/uuid"
)

type propertyStore struct {
	*Store
}

func (s *propertyStore) GetByID(_ context.Context, id uuid.UUID) (*properties.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, properties.ErrNotFound
	}
	return &p, nil
}

func (s *propertyStore) UpdateBasePrice(_ context.Context, id uuid.UUID, priceCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return properties.ErrNotFound
	}
	p.BasePriceCents = priceCents
	p.UpdatedAt = s.now()
	s.properties[id] = p
	return nil
}

func (s *propertyStore) ListSimilar(_ context.Context, p *properties.Property, limit int) ([]properties.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []properties.Property
	for _, o := range s.properties {
		if o.ID == p.ID || o.Neighborhood != p.Neighborhood || o.PropertyType != p.PropertyType || o.GuestCapacity != p.GuestCapacity {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *propertyStore) CountByHost(_ context.Context, hostID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.properties {
		if p.HostID == hostID {
			n++
		}
	}
	return n, nil
}

func (s *propertyStore) UpdateRating(_ context.Context, id uuid.UUID, average float64, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return properties.ErrNotFound
	}
	p.RatingAverage = average
	p.RatingCount = count
	p.UpdatedAt = s.now()
	s.properties[id] = p
	return nil
}
