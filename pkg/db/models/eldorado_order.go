package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// EldoradoOrder stages an order accepted on the external marketplace until an
// admin converts it into a LocalOrder. ConvertedToLocalID moves nil -> set
// exactly once.
type EldoradoOrder struct {
	EldoradoID         string              `gorm:"column:eldorado_id;primaryKey"`
	BuyerUsername      string              `gorm:"column:buyer_username;not null"`
	AcceptedPrice      decimal.Decimal     `gorm:"column:accepted_price;type:numeric(12,2);not null"`
	OrderLink          string              `gorm:"column:order_link"`
	State              enums.EldoradoState `gorm:"column:state;type:text;not null;default:'Pending Delivery'"`
	ConvertedToLocalID *string             `gorm:"column:converted_to_local_id"`
	ImportedAt         time.Time           `gorm:"column:imported_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
