package eldorado

import (
	"context"

	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an eldorado repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, eldoradoID string) (*models.EldoradoOrder, error) {
	var order models.EldoradoOrder
	err := r.db.WithContext(ctx).
		Where("eldorado_id = ?", eldoradoID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListPending(ctx context.Context) ([]models.EldoradoOrder, error) {
	var orders []models.EldoradoOrder
	err := r.db.WithContext(ctx).
		Where("converted_to_local_id IS NULL").
		Order("imported_at DESC, eldorado_id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.EldoradoOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) UpdateOrder(ctx context.Context, eldoradoID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.EldoradoOrder{}).
		Where("eldorado_id = ?", eldoradoID).
		Updates(updates).Error
}

// MarkConverted stamps the local order id only while the row is still
// unconverted. Zero rows affected means another admin converted it first.
func (r *repository) MarkConverted(ctx context.Context, eldoradoID, localOrderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EldoradoOrder{}).
		Where("eldorado_id = ? AND converted_to_local_id IS NULL", eldoradoID).
		Update("converted_to_local_id", localOrderID)
	return res.RowsAffected, res.Error
}
