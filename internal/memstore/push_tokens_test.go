package memstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nawartu/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })
	tokens := s.PushTokens()
	guest, host := uuid.New(), uuid.New()

	require.NoError(t, tokens.Save(ctx, guest, "ExponentPushToken[old]", json.RawMessage(`{"os":"ios"}`)))
	now = now.Add(time.Hour)
	require.NoError(t, tokens.Save(ctx, guest, " ExpoPushToken[new] ", nil))
	now = now.Add(time.Hour)
	require.NoError(t, tokens.Save(ctx, guest, "ExponentPushToken[old]", nil))

	t.Run("rejects non-Expo tokens", func(t *testing.T) {
		err := tokens.Save(ctx, host, "fcm:abc", nil)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		err = tokens.Save(ctx, host, "ExpoPushToken[]", nil)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	got, err := tokens.ForUsers(ctx, []uuid.UUID{guest, host})
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[old]", "ExpoPushToken[new]"}, got[guest])
	_, ok := got[host]
	assert.False(t, ok)

	require.NoError(t, tokens.Remove(ctx, guest, "ExpoPushToken[new]"))
	now = now.Add(71 * 24 * time.Hour)
	require.NoError(t, tokens.Save(ctx, host, "ExpoPushToken[fresh]", nil))

	n, err := tokens.PruneStale(ctx, 70*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = tokens.ForUsers(ctx, []uuid.UUID{guest, host})
	require.NoError(t, err)
	assert.Empty(t, got[guest])
	assert.Equal(t, []string{"ExpoPushToken[fresh]"}, got[host])
}
