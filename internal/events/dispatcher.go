package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nawartu/internal/booking"

	"go.uber.org/zap"
)

const defaultHandlerTimeout = 10 * time.Second

// Handler reacts to a committed booking event.
type Handler interface {
	Name() string
	Handle(ctx context.Context, e booking.Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc struct {
	N string
	F func(ctx context.Context, e booking.Event) error
}

func (h HandlerFunc) Name() string { return h.N }

func (h HandlerFunc) Handle(ctx context.Context, e booking.Event) error { return h.F(ctx, e) }

const defaultQueueSize = 256

type queued struct {
	ctx   context.Context
	event booking.Event
}

type worker struct {
	handler Handler
	queue   chan queued
}

// Dispatcher fans every event out to its handlers. Each handler has one
// worker draining its own queue, so a handler sees events in publish order.
// A failing or panicking handler is logged and does not affect the others.
type Dispatcher struct {
	workers []*worker
	logger  *zap.SugaredLogger
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
	running sync.WaitGroup
}

func NewDispatcher(logger *zap.SugaredLogger, handlers ...Handler) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	d := &Dispatcher{
		logger:  logger,
		timeout: defaultHandlerTimeout,
	}
	for _, h := range handlers {
		w := &worker{handler: h, queue: make(chan queued, defaultQueueSize)}
		d.workers = append(d.workers, w)
		d.running.Add(1)
		go d.drain(w)
	}
	return d
}

func (d *Dispatcher) SetTimeout(t time.Duration) {
	if t > 0 {
		d.timeout = t
	}
}

// Publish queues e for every handler and returns. It only blocks when a
// handler has fallen a full queue behind.
func (d *Dispatcher) Publish(ctx context.Context, e booking.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warnw("event dropped after shutdown", "event", e.Type, "reservation_id", e.Reservation.ID)
		return
	}

	// the request context is usually cancelled as soon as the response is written
	base := context.WithoutCancel(ctx)
	for _, w := range d.workers {
		d.pending.Add(1)
		w.queue <- queued{ctx: base, event: e}
	}
}

func (d *Dispatcher) drain(w *worker) {
	defer d.running.Done()
	for q := range w.queue {
		if err := d.run(q.ctx, w.handler, q.event); err != nil {
			d.logger.Warnw("event handler failed",
				"handler", w.handler.Name(),
				"event", q.event.Type,
				"reservation_id", q.event.Reservation.ID,
				"error", err.Error(),
			)
		}
		d.pending.Done()
	}
}

func (d *Dispatcher) run(base context.Context, h Handler, e booking.Event) (err error) {
	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

// Wait blocks until every event queued so far has been handled.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Close stops accepting events, drains the queues and stops the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, w := range d.workers {
			close(w.queue)
		}
	}
	d.mu.Unlock()
	d.running.Wait()
}

var _ booking.Publisher = (*Dispatcher)(nil)
