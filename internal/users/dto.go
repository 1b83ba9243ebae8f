package users

import (
	"github.com/google/uuid"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult bundles the minted token with the public user fields.
type LoginResult struct {
	Token    string
	UserID   uuid.UUID
	Username string
	Role     enums.Role
}

// CreateUserInput describes a new operator account.
type CreateUserInput struct {
	Username string
	Password string
	Role     enums.Role
}

// PublicUser is a user without the credential fields.
type PublicUser struct {
	ID       uuid.UUID
	Username string
	Role     enums.Role
}
