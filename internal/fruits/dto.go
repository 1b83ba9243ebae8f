package fruits

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// UpsertSkuInput creates a SKU or, when ID is set, updates its metadata.
// Quantity is never touched here; stock only moves through the ledger.
type UpsertSkuInput struct {
	ID       *uuid.UUID
	Name     string
	ImageRef string
	Rarity   enums.FruitRarity
	Price    decimal.Decimal
}

// AdjustStockInput is one manual stock correction.
type AdjustStockInput struct {
	Mode   enums.StockChangeMode
	Amount int
	Reason string
}

// AdjustStockResult reports what the correction actually did.
type AdjustStockResult struct {
	Sku         models.FruitSku
	ChangeDelta int
}

// WebhookReport is the parsed body of an external fruit-found notification.
type WebhookReport struct {
	Content string
}

// WebhookResult names the SKU the report resolved to.
type WebhookResult struct {
	Sku     models.FruitSku
	Message string
}
