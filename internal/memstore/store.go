package memstore

import (
	"context"
	"sync"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/pushtokens"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/domain/users"

	"github.com/google/uuid"
)

// Store keeps every booking table in memory. It implements
// booking.UnitOfWork and is used for local runs and tests.
type Store struct {
	mu           sync.RWMutex
	properties   map[uuid.UUID]properties.Property
	days         map[uuid.UUID]map[string]calendar.Day
	reservations map[uuid.UUID]reservations.Reservation
	tokens       map[uuid.UUID]map[string]tokenRecord
	users        map[uuid.UUID]users.User

	locks *keyedMutex
	now   func() time.Time
}

func New() *Store {
	return &Store{
		properties:   make(map[uuid.UUID]properties.Property),
		days:         make(map[uuid.UUID]map[string]calendar.Day),
		reservations: make(map[uuid.UUID]reservations.Reservation),
		tokens:       make(map[uuid.UUID]map[string]tokenRecord),
		users:        make(map[uuid.UUID]users.User),
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

func (s *Store) Stores() booking.Stores {
	return booking.Stores{
		Properties:   &propertyStore{s},
		Calendar:     &calendarStore{s},
		Reservations: &reservationStore{s},
	}
}

// WithPropertyLock runs fn while holding the property's lock. Writes made by
// fn are visible immediately. If fn fails, the property row and its calendar
// are put back the way they were when the lock was taken; fn performs its
// single ledger write last, so reservations need no undo.
func (s *Store) WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(st booking.Stores) error) error {
	unlock, err := s.locks.Lock(ctx, propertyID)
	if err != nil {
		return err
	}
	defer unlock()

	restore := s.snapshot(propertyID)
	if err := fn(s.Stores()); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *Store) snapshot(propertyID uuid.UUID) func() {
	s.mu.RLock()
	p, hadProperty := s.properties[propertyID]
	var days map[string]calendar.Day
	if byDate, ok := s.days[propertyID]; ok {
		days = make(map[string]calendar.Day, len(byDate))
		for k, d := range byDate {
			days[k] = clone(d)
		}
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if hadProperty {
			s.properties[propertyID] = p
		} else {
			delete(s.properties, propertyID)
		}
		if days != nil {
			s.days[propertyID] = days
		} else {
			delete(s.days, propertyID)
		}
	}
}

func (s *Store) PushTokens() pushtokens.Store {
	return &tokenStore{s}
}

func (s *Store) Users() users.Store {
	return &userStore{s}
}

// AddUser inserts or replaces a contact record.
func (s *Store) AddUser(u users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
}

// AddProperty inserts or replaces a property.
func (s *Store) AddProperty(p properties.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.properties[p.ID] = p
}

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
