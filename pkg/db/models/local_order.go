package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// LocalOrder is a boosting order tracked in-house, whether entered directly
// or converted from an Eldorado staging row.
type LocalOrder struct {
	ID               string            `gorm:"column:id;primaryKey"`
	Platform         string            `gorm:"column:platform"`
	EldoradoRef      *string           `gorm:"column:eldorado_ref"`
	ClientUsername   string            `gorm:"column:client_username;not null"`
	ClientPassword   string            `gorm:"column:client_password"`
	ClientEmail      string            `gorm:"column:client_email"`
	OrderType        enums.OrderType   `gorm:"column:order_type;type:text;not null;default:'Leveling'"`
	OrderLink        string            `gorm:"column:order_link"`
	AcceptedPrice    decimal.Decimal   `gorm:"column:accepted_price;type:numeric(12,2);not null"`
	AssignedWorkerID *uuid.UUID        `gorm:"column:assigned_worker_id;type:uuid"`
	AldoradoAccount  string            `gorm:"column:aldorado_account"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'New'"`
	Notes            string            `gorm:"column:notes"`
	ScreenshotRef    *string           `gorm:"column:screenshot_ref"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	CompletedAt      *time.Time        `gorm:"column:completed_at"`
}
