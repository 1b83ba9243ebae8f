package campaigns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a campaigns repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListCampaigns(ctx context.Context, activeOnly bool) ([]models.Campaign, error) {
	q := r.db.WithContext(ctx).Model(&models.Campaign{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var campaigns []models.Campaign
	err := q.Order("created_at DESC").Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repository) FindCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteCampaign(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Campaign{})
	return res.RowsAffected, res.Error
}

// A nil workerID aggregates over every worker.
func (r *repository) CountCompletedOrders(ctx context.Context, workerID *uuid.UUID, from, to time.Time) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("status = ? AND completed_at BETWEEN ? AND ?", enums.OrderStatusCompleted, from, to)
	if workerID != nil {
		q = q.Where("assigned_worker_id = ?", *workerID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) SumCompletedRevenue(ctx context.Context, workerID *uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Select("SUM(accepted_price)").
		Where("status = ? AND completed_at BETWEEN ? AND ?", enums.OrderStatusCompleted, from, to)
	if workerID != nil {
		q = q.Where("assigned_worker_id = ?", *workerID)
	}

	var total decimal.NullDecimal
	err := q.Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
