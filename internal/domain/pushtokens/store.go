package pushtokens

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/infra/dbx"

	"github.com/google/uuid"
)

var QueryTimeoutDuration = time.Second * 5

// Device tokens issued by Expo look like ExponentPushToken[xxxx] or
// ExpoPushToken[xxxx].
var tokenPrefixes = []string{"ExponentPushToken[", "ExpoPushToken["}

// Validate rejects values that Expo would never accept as a recipient.
func Validate(token string) error {
	token = strings.TrimSpace(token)
	if len(token) > 255 {
		return apperror.Validation("token", "push token is too long")
	}
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(token, p) && strings.HasSuffix(token, "]") && len(token) > len(p)+1 {
			return nil
		}
	}
	return apperror.Validation("token", "push token must be an Expo push token")
}

// Store keeps the devices a guest or host receives reservation pushes on.
type Store interface {
	// Save registers token for userID or refreshes its device info and
	// last-seen time.
	Save(ctx context.Context, userID uuid.UUID, token string, deviceInfo json.RawMessage) error
	Remove(ctx context.Context, userID uuid.UUID, token string) error
	// ForUsers groups tokens by owner. Users without devices are absent.
	ForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	// PruneStale drops tokens not refreshed within olderThan and reports how
	// many went.
	PruneStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Save(ctx context.Context, userID uuid.UUID, token string, deviceInfo json.RawMessage) error {
	if err := Validate(token); err != nil {
		return err
	}
	if len(deviceInfo) == 0 {
		deviceInfo = nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.q.Exec(ctx, `
		INSERT INTO user_push_tokens (user_id, expo_push_token, device_info, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, expo_push_token)
		DO UPDATE SET device_info = COALESCE(EXCLUDED.device_info, user_push_tokens.device_info),
		              last_updated = NOW()`,
		userID, strings.TrimSpace(token), deviceInfo)
	return err
}

func (r *Repository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.q.Exec(ctx, `DELETE FROM user_push_tokens WHERE user_id = $1 AND expo_push_token = $2`, userID, strings.TrimSpace(token))
	return err
}

func (r *Repository) ForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT user_id, expo_push_token
		FROM user_push_tokens
		WHERE user_id = ANY($1)
		ORDER BY user_id, last_updated DESC`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			uid   uuid.UUID
			token string
		)
		if err := rows.Scan(&uid, &token); err != nil {
			return nil, err
		}
		out[uid] = append(out[uid], token)
	}
	return out, rows.Err()
}

func (r *Repository) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.q.Exec(ctx,
		`DELETE FROM user_push_tokens WHERE last_updated < NOW() - make_interval(secs => $1)`,
		olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
