package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// FruitSku is one virtual item in stock. Quantity never goes negative and is
// always reconstructible from the fruit stock event ledger.
type FruitSku struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name      string            `gorm:"column:name;not null;uniqueIndex"`
	ImageRef  string            `gorm:"column:image_ref"`
	Quantity  int               `gorm:"column:quantity;not null;default:0"`
	Rarity    enums.FruitRarity `gorm:"column:rarity;type:text;not null;default:'Common'"`
	Price     decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
