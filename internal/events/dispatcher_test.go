package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	name   string
	events []booking.Event
	err    error
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Handle(ctx context.Context, e booking.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) seen() []booking.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]booking.Event(nil), h.events...)
}

func testEvent() booking.Event {
	return booking.Event{
		Type: booking.EventReservationCreated,
		Reservation: reservations.Reservation{
			ID:         uuid.New(),
			PropertyID: uuid.New(),
			Status:     reservations.StatusPending,
		},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherFansOut(t *testing.T) {
	a := &recordingHandler{name: "a"}
	b := &recordingHandler{name: "b"}
	d := NewDispatcher(nil, a, b)

	e := testEvent()
	d.Publish(context.Background(), e)
	d.Wait()

	require.Len(t, a.seen(), 1)
	require.Len(t, b.seen(), 1)
	assert.Equal(t, e.Reservation.ID, a.seen()[0].Reservation.ID)
	assert.Equal(t, booking.EventReservationCreated, b.seen()[0].Type)
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	failing := &recordingHandler{name: "failing", err: errors.New("smtp down")}
	panicking := HandlerFunc{N: "panicking", F: func(context.Context, booking.Event) error {
		panic("boom")
	}}
	ok := &recordingHandler{name: "ok"}
	d := NewDispatcher(nil, failing, panicking, ok)

	d.Publish(context.Background(), testEvent())
	d.Wait()

	assert.Len(t, failing.seen(), 1)
	assert.Len(t, ok.seen(), 1)
}

func TestDispatcherOutlivesRequestContext(t *testing.T) {
	var gotErr error
	done := make(chan struct{})
	h := HandlerFunc{N: "slow", F: func(ctx context.Context, _ booking.Event) error {
		defer close(done)
		time.Sleep(20 * time.Millisecond)
		gotErr = ctx.Err()
		return nil
	}}
	d := NewDispatcher(nil, h)

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ctx, testEvent())
	cancel()
	d.Wait()

	<-done
	assert.NoError(t, gotErr)
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	var deadline bool
	h := HandlerFunc{N: "deadline", F: func(ctx context.Context, _ booking.Event) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	}}
	d := NewDispatcher(nil, h)
	d.SetTimeout(10 * time.Millisecond)

	d.Publish(context.Background(), testEvent())
	d.Wait()

	assert.True(t, deadline)
}

func TestDispatcherKeepsPublishOrderPerHandler(t *testing.T) {
	var mu sync.Mutex
	var delivered []booking.EventType
	h := HandlerFunc{N: "broker", F: func(_ context.Context, e booking.Event) error {
		if e.Type == booking.EventStatusChanged {
			time.Sleep(20 * time.Millisecond)
		}
		mu.Lock()
		delivered = append(delivered, e.Type)
		mu.Unlock()
		return nil
	}}
	d := NewDispatcher(nil, h)
	defer d.Close()

	first := testEvent()
	first.Type = booking.EventStatusChanged
	second := first
	second.Type = booking.EventPaymentUpdated

	d.Publish(context.Background(), first)
	d.Publish(context.Background(), second)
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []booking.EventType{booking.EventStatusChanged, booking.EventPaymentUpdated}, delivered)
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	h := &recordingHandler{name: "h"}
	d := NewDispatcher(nil, h)

	for i := 0; i < 5; i++ {
		d.Publish(context.Background(), testEvent())
	}
	d.Close()
	assert.Len(t, h.seen(), 5)

	d.Publish(context.Background(), testEvent())
	d.Close()
	assert.Len(t, h.seen(), 5)
}
