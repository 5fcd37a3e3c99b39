package memstore

import (
	"context"

	"nawartu/internal/domain/users"

	"github.com/google/uuid"
)

type userStore struct {
	*Store
}

func (s *userStore) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]users.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
