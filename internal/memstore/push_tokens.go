package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"nawartu/internal/domain/pushtokens"

	"github.com/google/uuid"
)

type tokenRecord struct {
	deviceInfo  json.RawMessage
	lastUpdated time.Time
}

type tokenStore struct {
	*Store
}

func (s *tokenStore) Save(_ context.Context, userID uuid.UUID, token string, deviceInfo json.RawMessage) error {
	if err := pushtokens.Validate(token); err != nil {
		return err
	}
	token = strings.TrimSpace(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	byToken, ok := s.tokens[userID]
	if !ok {
		byToken = make(map[string]tokenRecord)
		s.tokens[userID] = byToken
	}
	rec := byToken[token]
	if len(deviceInfo) > 0 {
		rec.deviceInfo = append(json.RawMessage(nil), deviceInfo...)
	}
	rec.lastUpdated = s.now()
	byToken[token] = rec
	return nil
}

func (s *tokenStore) Remove(_ context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens[userID], strings.TrimSpace(token))
	return nil
}

func (s *tokenStore) ForUsers(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID][]string, len(userIDs))
	for _, id := range userIDs {
		byToken := s.tokens[id]
		if len(byToken) == 0 {
			continue
		}
		list := make([]string, 0, len(byToken))
		for t := range byToken {
			list = append(list, t)
		}
		// newest first, like the repository
		sort.Slice(list, func(i, j int) bool {
			return byToken[list[i]].lastUpdated.After(byToken[list[j]].lastUpdated)
		})
		out[id] = list
	}
	return out, nil
}

func (s *tokenStore) PruneStale(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	cutoff := s.now().Add(-olderThan)
	for _, byToken := range s.tokens {
		for t, rec := range byToken {
			if rec.lastUpdated.Before(cutoff) {
				delete(byToken, t)
				n++
			}
		}
	}
	return n, nil
}
