package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

// Repository defines the read queries behind the reporting endpoints.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]models.LocalOrder, error)
	WorkerOrderStats(ctx context.Context) ([]WorkerOrderRow, error)
	WorkerMinutes(ctx context.Context, userID uuid.UUID) (int64, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.WorkSession, error)
}
