package memstore

import (
	"context"
	"sort"
	"time"

	"nawartu/internal/domain/calendar"

	"github.com/google/uuid"
)

// clone copies the custom price so callers never share the stored pointer.
func clone(d calendar.Day) calendar.Day {
	if d.CustomPriceCents != nil {
		p := *d.CustomPriceCents
		d.CustomPriceCents = &p
	}
	return d
}

type calendarStore struct {
	*Store
}

func (s *calendarStore) GetOverridesInRange(_ context.Context, propertyID uuid.UUID, start, endExclusive time.Time) ([]calendar.Day, error) {
	start, endExclusive = calendar.DateOf(start), calendar.DateOf(endExclusive)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []calendar.Day
	for _, d := range s.days[propertyID] {
		if d.Date.Before(start) || !d.Date.Before(endExclusive) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *calendarStore) UpsertOverride(_ context.Context, propertyID uuid.UUID, date time.Time, f calendar.Fields) (*calendar.Day, error) {
	if err := calendar.ValidateDate("date", date); err != nil {
		return nil, err
	}
	if err := calendar.ValidateFields(f); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.upsertLocked(propertyID, date, f)
	return &d, nil
}

func (s *calendarStore) BulkUpsert(ctx context.Context, propertyID uuid.UUID, dates []time.Time, f calendar.Fields) ([]calendar.Day, error) {
	changes := make([]calendar.Change, 0, len(dates))
	for _, d := range dates {
		changes = append(changes, calendar.Change{Date: d, Fields: f})
	}
	return s.ApplyChanges(ctx, propertyID, changes)
}

// ApplyChanges validates the whole batch before writing any of it.
func (s *calendarStore) ApplyChanges(_ context.Context, propertyID uuid.UUID, changes []calendar.Change) ([]calendar.Day, error) {
	if err := calendar.ValidateChanges(changes); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]calendar.Day, 0, len(changes))
	for _, c := range changes {
		out = append(out, s.upsertLocked(propertyID, c.Date, c.Fields))
	}
	return out, nil
}

func (s *calendarStore) upsertLocked(propertyID uuid.UUID, date time.Time, f calendar.Fields) calendar.Day {
	now := s.now()
	key := calendar.Key(calendar.DateOf(date))

	byDate, ok := s.days[propertyID]
	if !ok {
		byDate = make(map[string]calendar.Day)
		s.days[propertyID] = byDate
	}

	d, ok := byDate[key]
	if !ok {
		d = calendar.NewDay(propertyID, date)
		d.CreatedAt = now
	}
	d = f.Apply(d)
	d.UpdatedAt = now
	byDate[key] = d
	return clone(d)
}
