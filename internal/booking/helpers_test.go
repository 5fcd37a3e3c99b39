package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

type recordingPublisher struct {
	mu     sync.Mutex
	events []booking.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e booking.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []booking.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]booking.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	svc      *booking.Service
	events   *recordingPublisher
	property properties.Property
	now      time.Time
}

// newFixture seeds one property priced at 100.00 per night.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memstore.New(),
		events: &recordingPublisher{},
		now:    clock,
	}
	f.property = properties.Property{
		ID:             uuid.New(),
		HostID:         uuid.New(),
		Title:          "Sea view loft",
		Neighborhood:   "Old Town",
		PropertyType:   "apartment",
		BasePriceCents: 10000,
		GuestCapacity:  4,
		IsAvailable:    true,
	}
	f.store.AddProperty(f.property)
	f.svc = f.service(f.store)
	return f
}

func (f *fixture) service(uow booking.UnitOfWork) *booking.Service {
	return booking.NewService(uow, booking.Config{
		Publisher: f.events,
		Now:       func() time.Time { return f.now },
	})
}

func (f *fixture) override(t *testing.T, day string, fields calendar.Fields) {
	t.Helper()
	_, err := f.store.Stores().Calendar.UpsertOverride(context.Background(), f.property.ID, date(day), fields)
	require.NoError(t, err)
}

func (f *fixture) book(in, out string) (*reservations.Reservation, error) {
	return f.svc.CreateReservation(context.Background(), booking.CreateReservationInput{
		PropertyID: f.property.ID,
		GuestID:    uuid.New(),
		CheckIn:    date(in),
		CheckOut:   date(out),
		GuestCount: 2,
	})
}

func (f *fixture) host() reservations.Actor {
	return reservations.Actor{Role: reservations.RoleHost, UserID: f.property.HostID}
}

// brokenCalendar fails every calendar read.
type brokenCalendar struct {
	calendar.Store
}

func (brokenCalendar) GetOverridesInRange(context.Context, uuid.UUID, time.Time, time.Time) ([]calendar.Day, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type brokenCalendarUoW struct {
	*memstore.Store
}

func (u brokenCalendarUoW) Stores() booking.Stores {
	st := u.Store.Stores()
	st.Calendar = brokenCalendar{st.Calendar}
	return st
}

// blindLedger never reports overlaps, so only the storage write can catch
// them.
type blindLedger struct {
	reservations.Store
}

func (blindLedger) FindOverlapping(context.Context, uuid.UUID, time.Time, time.Time, []reservations.Status) ([]reservations.Reservation, error) {
	return nil, nil
}

type blindUoW struct {
	*memstore.Store
}

func (u blindUoW) Stores() booking.Stores {
	st := u.Store.Stores()
	st.Reservations = blindLedger{st.Reservations}
	return st
}

func (u blindUoW) WithPropertyLock(_ context.Context, _ uuid.UUID, fn func(booking.Stores) error) error {
	return fn(u.Stores())
}

// failingApply accepts reads but fails every batch calendar write.
type failingApply struct {
	calendar.Store
}

func (failingApply) ApplyChanges(context.Context, uuid.UUID, []calendar.Change) ([]calendar.Day, error) {
	return nil, errors.New("connection reset by peer")
}

type failingApplyUoW struct {
	*memstore.Store
}

func (u failingApplyUoW) WithPropertyLock(ctx context.Context, id uuid.UUID, fn func(booking.Stores) error) error {
	return u.Store.WithPropertyLock(ctx, id, func(st booking.Stores) error {
		st.Calendar = failingApply{st.Calendar}
		return fn(st)
	})
}
