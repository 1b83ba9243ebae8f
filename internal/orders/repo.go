package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	"github.com/boosthq/boosthq-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextOrderNumber increments the single-row counter and returns the value
// this caller owns. The UPDATE takes a row lock, so concurrent creators
// serialize here and no two orders share a number.
func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderIDSequence{}).
		Where("id = ?", 1).
		Update("next_value", gorm.Expr("next_value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("order id sequence row missing")
	}

	var seq models.OrderIDSequence
	if err := r.db.WithContext(ctx).Where("id = ?", 1).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.NextValue - 1, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.LocalOrder) (*models.LocalOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateHistoryEntry(ctx context.Context, entry *models.OrderHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID string) (*models.LocalOrder, error) {
	var order models.LocalOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&models.LocalOrder{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.OrderType != nil {
		q = q.Where("order_type = ?", *filters.OrderType)
	}
	if filters.AssignedWorkerID != nil {
		q = q.Where("assigned_worker_id = ?", *filters.AssignedWorkerID)
	}
	if filters.Unassigned {
		q = q.Where("assigned_worker_id IS NULL")
	}
	if filters.Account != "" {
		q = q.Where("aldorado_account = ?", filters.Account)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.LocalOrder
	err = q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: rows}
	if len(rows) > limit {
		list.Orders = rows[:limit]
		last := list.Orders[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ListHistory(ctx context.Context, orderID string) ([]models.OrderHistoryEntry, error) {
	var entries []models.OrderHistoryEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ClaimOrder assigns the worker only when the order is still unassigned
// and its status still matches the one the caller read. Zero rows
// affected means another writer won.
func (r *repository) ClaimOrder(ctx context.Context, orderID string, workerID uuid.UUID, from enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("id = ? AND assigned_worker_id IS NULL AND status = ?", orderID, from).
		Updates(map[string]any{
			"assigned_worker_id": workerID,
			"status":             enums.OrderStatusWorking,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// TransitionStatus flips the status only when the current value still
// matches. Zero rows affected means a concurrent writer moved it first.
func (r *repository) TransitionStatus(ctx context.Context, orderID string, from, to enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// CompleteOrder marks the order Completed only when its status still
// matches the one the caller read, so the terminal transition is
// single-winner and the recorded previous status is the real one.
func (r *repository) CompleteOrder(ctx context.Context, orderID string, from enums.OrderStatus, completedAt time.Time, updates map[string]any) (int64, error) {
	merged := map[string]any{
		"status":       enums.OrderStatusCompleted,
		"completed_at": completedAt,
	}
	for k, v := range updates {
		merged[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("id = ? AND status = ? AND status <> ?", orderID, from, enums.OrderStatusCompleted).
		Updates(merged)
	return res.RowsAffected, res.Error
}

func (r *repository) DistinctAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	err := r.db.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Distinct("aldorado_account").
		Where("aldorado_account <> ''").
		Order("aldorado_account ASC").
		Pluck("aldorado_account", &accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) ListFruitLinks(ctx context.Context, orderID string) ([]models.FruitOrderLink, error) {
	var links []models.FruitOrderLink
	err := r.db.WithContext(ctx).
		Where("local_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
