package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeSource produces the public confirmation code of a reservation.
type CodeSource interface {
	Generate(id uuid.UUID) (string, error)
}

type Config struct {
	Publisher Publisher
	Cache     QuoteCache
	Codes     CodeSource
	Logger    *zap.SugaredLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service resolves availability and prices, and owns every write to the
// reservation ledger.
type Service struct {
	uow       UnitOfWork
	publisher Publisher
	cache     QuoteCache
	codes     CodeSource
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewService(uow UnitOfWork, cfg Config) *Service {
	s := &Service{
		uow:       uow,
		publisher: cfg.Publisher,
		cache:     cfg.Cache,
		codes:     cfg.Codes,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.cache == nil {
		s.cache = nopCache{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Property returns a property or a NotFound error.
func (s *Service) Property(ctx context.Context, id uuid.UUID) (*properties.Property, error) {
	return loadProperty(ctx, s.uow.Stores(), id)
}

func loadProperty(ctx context.Context, st Stores, id uuid.UUID) (*properties.Property, error) {
	p, err := st.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, propertyError(id, err)
	}
	return p, nil
}

func propertyError(id uuid.UUID, err error) error {
	if errors.Is(err, properties.ErrNotFound) {
		return apperror.NotFound("property %s not found", id)
	}
	return apperror.Dependency(err, "property storage unavailable")
}

func loadReservation(ctx context.Context, st Stores, id uuid.UUID) (*reservations.Reservation, error) {
	r, err := st.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, ledgerError(err)
	}
	return r, nil
}

// ledgerError maps reservation store errors onto the error kinds callers see.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, reservations.ErrNotFound):
		return apperror.NotFound("reservation not found")
	case errors.Is(err, reservations.ErrStatusChanged):
		return apperror.Conflict("reservation was changed by another request, reload and try again")
	case errors.Is(err, reservations.ErrOverlap):
		return apperror.Conflict("dates not available: overlaps an existing stay")
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Dependency(err, "reservation storage unavailable")
}

// invalidate drops cached quotes for a property. Errors are logged, not
// returned.
func (s *Service) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		s.logger.Warnw("quote cache invalidation failed", "property_id", propertyID, "error", err.Error())
	}
}

func (s *Service) publish(ctx context.Context, t EventType, r *reservations.Reservation, prev reservations.Status) {
	s.publisher.Publish(ctx, Event{
		Type:           t,
		Reservation:    *r,
		PreviousStatus: prev,
		OccurredAt:     s.now().UTC(),
	})
}

func (s *Service) newCode(id uuid.UUID) string {
	if s.codes != nil {
		code, err := s.codes.Generate(id)
		if err == nil {
			return code
		}
		s.logger.Warnw("confirmation code generation failed", "reservation_id", id, "error", err.Error())
	}
	return "NW-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}
