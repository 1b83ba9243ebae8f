package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// OrderHistoryEntry is one row of the append-only status audit trail.
// StatusFrom is nil for the creation entry.
type OrderHistoryEntry struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    string             `gorm:"column:order_id;not null;index"`
	StatusFrom *enums.OrderStatus `gorm:"column:status_from;type:text"`
	StatusTo   enums.OrderStatus  `gorm:"column:status_to;type:text;not null"`
	ChangedBy  uuid.UUID          `gorm:"column:changed_by;type:uuid;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// TableName matches the migration's shorter name.
func (OrderHistoryEntry) TableName() string {
	return "order_history"
}
