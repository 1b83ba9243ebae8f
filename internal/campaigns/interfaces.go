package campaigns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

// Repository defines persistence operations for bonus campaigns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListCampaigns(ctx context.Context, activeOnly bool) ([]models.Campaign, error)
	FindCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
	DeleteCampaign(ctx context.Context, id uuid.UUID) (int64, error)
	CountCompletedOrders(ctx context.Context, workerID *uuid.UUID, from, to time.Time) (int64, error)
	SumCompletedRevenue(ctx context.Context, workerID *uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}
