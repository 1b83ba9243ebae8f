package auth

import (
	"github.com/boosthq/boosthq-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor is the validated identity every core operation receives.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// IsWorker reports whether the actor carries the worker role.
func (a Actor) IsWorker() bool {
	return a.Role == enums.RoleWorker
}

// Owns reports whether the actor is the referenced worker.
func (a Actor) Owns(workerID *uuid.UUID) bool {
	return workerID != nil && *workerID == a.UserID
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username,omitempty"`
	Role     enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the identity the core operates on.
func (c *AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}
