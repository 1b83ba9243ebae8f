package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	"github.com/boosthq/boosthq-backend/pkg/pagination"
)

// Repository defines persistence operations for the order lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextOrderNumber(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order *models.LocalOrder) (*models.LocalOrder, error)
	CreateHistoryEntry(ctx context.Context, entry *models.OrderHistoryEntry) error
	FindOrder(ctx context.Context, orderID string) (*models.LocalOrder, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListHistory(ctx context.Context, orderID string) ([]models.OrderHistoryEntry, error)
	ClaimOrder(ctx context.Context, orderID string, workerID uuid.UUID, from enums.OrderStatus) (int64, error)
	UpdateOrder(ctx context.Context, orderID string, updates map[string]any) error
	TransitionStatus(ctx context.Context, orderID string, from, to enums.OrderStatus) (int64, error)
	CompleteOrder(ctx context.Context, orderID string, from enums.OrderStatus, completedAt time.Time, updates map[string]any) (int64, error)
	DistinctAccounts(ctx context.Context) ([]string, error)
	ListFruitLinks(ctx context.Context, orderID string) ([]models.FruitOrderLink, error)
}
