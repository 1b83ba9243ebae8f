package fruits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

// Repository defines persistence operations for the fruit stock tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListSkus(ctx context.Context) ([]models.FruitSku, error)
	FindSku(ctx context.Context, id uuid.UUID) (*models.FruitSku, error)
	FindSkuByName(ctx context.Context, name string) (*models.FruitSku, error)
	SearchSkusByName(ctx context.Context, fragment string) ([]models.FruitSku, error)
	CreateSku(ctx context.Context, sku *models.FruitSku) (*models.FruitSku, error)
	UpdateSku(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AdjustQuantityGuarded(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	SetQuantityCAS(ctx context.Context, id uuid.UUID, oldQty, newQty int) (int64, error)
	CreateStockEvent(ctx context.Context, event *models.FruitStockEvent) error
	CreateOrderLink(ctx context.Context, link *models.FruitOrderLink) error
	ListStockEvents(ctx context.Context, fruitID uuid.UUID) ([]models.FruitStockEvent, error)
}
