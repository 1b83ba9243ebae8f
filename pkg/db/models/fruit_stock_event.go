package models

import (
	"time"

	"github.com/google/uuid"
)

// FruitStockEvent is one row of the append-only stock ledger. For every SKU,
// quantity equals the sum of ChangeAmount over its events.
type FruitStockEvent struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FruitID      uuid.UUID `gorm:"column:fruit_id;type:uuid;not null;index"`
	ChangeAmount int       `gorm:"column:change_amount;not null"`
	Reason       string    `gorm:"column:reason;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
