package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "nawartu", "nawartu-identity")
	id := uuid.New()

	token, err := a.GenerateToken(id, RoleHost)
	require.NoError(t, err)

	p, err := a.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, p.UserID)
	assert.Equal(t, RoleHost, p.Role)
}

func TestJWTRejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "nawartu", "nawartu-identity")
	id := uuid.New()

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTAuthenticator("other", "nawartu", "nawartu-identity")
		token, err := other.GenerateToken(id, RoleGuest)
		require.NoError(t, err)
		_, err = a.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewJWTAuthenticator("secret", "someone-else", "nawartu-identity")
		token, err := other.GenerateToken(id, RoleGuest)
		require.NoError(t, err)
		_, err = a.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewJWTAuthenticator("secret", "nawartu", "nawartu-identity")
		old.now = func() time.Time { return time.Now().Add(-accessTokenTTL - time.Hour) }
		token, err := old.GenerateToken(id, RoleGuest)
		require.NoError(t, err)
		_, err = a.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		c := claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "nawartu-identity",
			Audience:  jwt.ClaimStrings{"nawartu"},
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = a.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := a.GenerateToken(id, "superuser")
		require.NoError(t, err)
		_, err = a.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTMissingRoleDefaultsToGuest(t *testing.T) {
	a := NewJWTAuthenticator("secret", "nawartu", "nawartu-identity")
	token, err := a.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	p, err := a.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleGuest, p.Role)
}
