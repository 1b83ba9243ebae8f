package models

import (
	"time"

	"github.com/google/uuid"
)

// FruitOrderLink records that a local order consumed N units of a SKU.
// Rows are written once during reservation and never mutated.
type FruitOrderLink struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	LocalOrderID string    `gorm:"column:local_order_id;not null;index"`
	FruitID      uuid.UUID `gorm:"column:fruit_id;type:uuid;not null;index"`
	Quantity     int       `gorm:"column:quantity;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
