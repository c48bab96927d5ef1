package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, unexpected algorithms, malformed input and expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue signs a session token with the default lifetime.
	Issue(userID uuid.UUID, roles []string) (string, error)

	// IssueWithTTL signs a session token that expires after ttl.
	IssueWithTTL(userID uuid.UUID, roles []string, ttl time.Duration) (string, error)

	// Verify returns the claims of a valid token or ErrInvalidToken.
	Verify(tokenString string) (*Claims, error)

	// TTL returns the default token lifetime.
	TTL() time.Duration
}
