package eldorado

import (
	"context"

	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

// Repository defines persistence operations for the marketplace staging table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, eldoradoID string) (*models.EldoradoOrder, error)
	ListPending(ctx context.Context) ([]models.EldoradoOrder, error)
	CreateOrder(ctx context.Context, order *models.EldoradoOrder) error
	UpdateOrder(ctx context.Context, eldoradoID string, updates map[string]any) error
	MarkConverted(ctx context.Context, eldoradoID, localOrderID string) (int64, error)
}
