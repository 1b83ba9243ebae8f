package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// Campaign is a bonus goal workers race toward. Progress is always computed
// from order data at read time, never stored.
type Campaign struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title       string             `gorm:"column:title;not null"`
	Description string             `gorm:"column:description"`
	Type        enums.CampaignType `gorm:"column:type;type:text;not null"`
	TargetValue decimal.Decimal    `gorm:"column:target_value;type:numeric(12,2);not null"`
	Reward      string             `gorm:"column:reward"`
	StartDate   time.Time          `gorm:"column:start_date;not null"`
	EndDate     time.Time          `gorm:"column:end_date;not null"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
