package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// User is an operator account. Session issuance lives outside the core;
// the row exists so orders and work sessions have something to reference.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username     string     `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;type:text;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
