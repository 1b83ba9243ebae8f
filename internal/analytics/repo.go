package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]models.LocalOrder, error) {
	var orders []models.LocalOrder
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) WorkerOrderStats(ctx context.Context) ([]WorkerOrderRow, error) {
	var rows []WorkerOrderRow
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(`users.id AS user_id,
			users.username AS username,
			COUNT(lo.id) AS total_orders,
			COALESCE(SUM(CASE WHEN lo.status = ? THEN 1 ELSE 0 END), 0) AS completed_orders,
			COALESCE(SUM(CASE WHEN lo.status = ? THEN lo.accepted_price ELSE 0 END), 0) AS revenue_generated`,
			enums.OrderStatusCompleted, enums.OrderStatusCompleted).
		Joins("LEFT JOIN local_orders lo ON lo.assigned_worker_id = users.id").
		Group("users.id, users.username").
		Order("users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) WorkerMinutes(ctx context.Context, userID uuid.UUID) (int64, error) {
	var minutes *int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkSession{}).
		Select("SUM(duration_minutes)").
		Where("user_id = ?", userID).
		Scan(&minutes).Error
	if err != nil {
		return 0, err
	}
	if minutes == nil {
		return 0, nil
	}
	return *minutes, nil
}

func (r *repository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("login_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
