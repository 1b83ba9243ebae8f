package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkSession is written by the auth layer at login/logout; analytics only
// reads DurationMinutes.
type WorkSession struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	LoginTime       time.Time  `gorm:"column:login_time;autoCreateTime"`
	LogoutTime      *time.Time `gorm:"column:logout_time"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null;default:0"`
}
