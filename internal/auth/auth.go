package auth

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Role values carried in the "role" claim.
const (
	RoleGuest = "guest"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// Principal is the caller identified by a bearer token.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

type Authenticator interface {
	GenerateToken(userID uuid.UUID, role string) (string, error)
	ValidateAccessToken(token string) (*Principal, error)
}
