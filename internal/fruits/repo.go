package fruits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fruits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListSkus(ctx context.Context) ([]models.FruitSku, error) {
	var skus []models.FruitSku
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&skus).Error
	if err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *repository) FindSku(ctx context.Context, id uuid.UUID) (*models.FruitSku, error) {
	var sku models.FruitSku
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sku).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *repository) FindSkuByName(ctx context.Context, name string) (*models.FruitSku, error) {
	var sku models.FruitSku
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&sku).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *repository) SearchSkusByName(ctx context.Context, fragment string) ([]models.FruitSku, error) {
	var skus []models.FruitSku
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+fragment+"%").
		Order("name ASC").
		Find(&skus).Error
	if err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *repository) CreateSku(ctx context.Context, sku *models.FruitSku) (*models.FruitSku, error) {
	if sku.ID == uuid.Nil {
		sku.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(sku).Error; err != nil {
		return nil, err
	}
	return sku, nil
}

func (r *repository) UpdateSku(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.FruitSku{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AdjustQuantityGuarded applies a relative change only while the result
// stays non-negative. Zero rows affected means insufficient stock.
func (r *repository) AdjustQuantityGuarded(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FruitSku{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	return res.RowsAffected, res.Error
}

// SetQuantityCAS swaps the quantity only when the stored value still equals
// oldQty, so the ledger delta written alongside stays truthful.
func (r *repository) SetQuantityCAS(ctx context.Context, id uuid.UUID, oldQty, newQty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FruitSku{}).
		Where("id = ? AND quantity = ?", id, oldQty).
		Update("quantity", newQty)
	return res.RowsAffected, res.Error
}

func (r *repository) CreateStockEvent(ctx context.Context, event *models.FruitStockEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) CreateOrderLink(ctx context.Context, link *models.FruitOrderLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) ListStockEvents(ctx context.Context, fruitID uuid.UUID) ([]models.FruitStockEvent, error) {
	var events []models.FruitStockEvent
	err := r.db.WithContext(ctx).
		Where("fruit_id = ?", fruitID).
		Order("created_at DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
