package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockReserver consumes fruit stock for an order inside the caller's
// transaction. Implemented by the fruits service.
type StockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, orderID string, fruitID uuid.UUID, qty int) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateOrderInput) (*models.LocalOrder, error)
	CreateInTx(ctx context.Context, tx *gorm.DB, actor auth.Actor, input CreateOrderInput) (*models.LocalOrder, error)
	Claim(ctx context.Context, actor auth.Actor, orderID string) (*models.LocalOrder, error)
	Update(ctx context.Context, actor auth.Actor, orderID string, input UpdateOrderInput) (*models.LocalOrder, error)
	Complete(ctx context.Context, actor auth.Actor, orderID string, input CompleteOrderInput) (*models.LocalOrder, error)
	List(ctx context.Context, actor auth.Actor, params pagination.Params, filters OrderFilters) (*OrderList, error)
	Get(ctx context.Context, actor auth.Actor, orderID string) (*OrderDetail, error)
	History(ctx context.Context, actor auth.Actor, orderID string) ([]models.OrderHistoryEntry, error)
	DistinctAccounts(ctx context.Context, actor auth.Actor) ([]string, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	stock StockReserver
	now   func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, stock StockReserver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock reserver required")
	}
	return &service{
		repo:  repo,
		tx:    tx,
		stock: stock,
		now:   time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateOrderInput) (*models.LocalOrder, error) {
	var created *models.LocalOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.CreateInTx(ctx, tx, actor, input)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateInTx opens an order within the caller's transaction so conversion
// from the marketplace staging table stays atomic.
func (s *service) CreateInTx(ctx context.Context, tx *gorm.DB, actor auth.Actor, input CreateOrderInput) (*models.LocalOrder, error) {
	if !actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	if input.ClientUsername == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client username required")
	}
	if !input.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if input.AcceptedPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accepted price cannot be negative")
	}
	if input.OrderType != enums.OrderTypeFruit && len(input.FruitLines) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit lines only apply to fruit orders")
	}
	for _, line := range input.FruitLines {
		if line.FruitID == uuid.Nil || line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit lines need a sku and positive quantity")
		}
	}

	repo := s.repo.WithTx(tx)

	number, err := repo.NextOrderNumber(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := &models.LocalOrder{
		ID:               fmt.Sprintf("ORD-%04d", number),
		Platform:         input.Platform,
		EldoradoRef:      input.EldoradoRef,
		ClientUsername:   input.ClientUsername,
		ClientPassword:   input.ClientPassword,
		ClientEmail:      input.ClientEmail,
		OrderType:        input.OrderType,
		OrderLink:        input.OrderLink,
		AcceptedPrice:    input.AcceptedPrice,
		AssignedWorkerID: input.AssignedWorkerID,
		AldoradoAccount:  input.AldoradoAccount,
		Status:           enums.OrderStatusNew,
		Notes:            input.Notes,
	}
	if _, err := repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	entry := &models.OrderHistoryEntry{
		OrderID:   order.ID,
		StatusTo:  enums.OrderStatusNew,
		ChangedBy: actor.UserID,
	}
	if err := repo.CreateHistoryEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order creation")
	}

	for _, line := range input.FruitLines {
		if err := s.stock.Reserve(ctx, tx, order.ID, line.FruitID, line.Quantity); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func (s *service) Claim(ctx context.Context, actor auth.Actor, orderID string) (*models.LocalOrder, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !actor.IsWorker() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only workers can claim orders")
	}

	var claimed *models.LocalOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.AssignedWorkerID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already claimed")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot be claimed")
		}

		rows, err := repo.ClaimOrder(ctx, orderID, actor.UserID, order.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already claimed")
		}

		from := order.Status
		entry := &models.OrderHistoryEntry{
			OrderID:    orderID,
			StatusFrom: &from,
			StatusTo:   enums.OrderStatusWorking,
			ChangedBy:  actor.UserID,
		}
		if err := repo.CreateHistoryEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record claim")
		}

		order, err = repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		claimed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, orderID string, input UpdateOrderInput) (*models.LocalOrder, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if *input.Status == enums.OrderStatusCompleted {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion has its own endpoint")
		}
	}
	if input.AcceptedPrice != nil && input.AcceptedPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accepted price cannot be negative")
	}
	if !actor.IsAdmin() && touchesRestrictedFields(input) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "workers may only change notes and status")
	}

	var updated *models.LocalOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !actor.IsAdmin() && !actor.Owns(order.AssignedWorkerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another worker")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot change")
		}

		if input.Status != nil && *input.Status != order.Status {
			if !order.Status.CanTransitionTo(*input.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot move order from %s to %s", order.Status, *input.Status))
			}
			rows, err := repo.TransitionStatus(ctx, orderID, order.Status, *input.Status)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition status")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
			}
			from := order.Status
			entry := &models.OrderHistoryEntry{
				OrderID:    orderID,
				StatusFrom: &from,
				StatusTo:   *input.Status,
				ChangedBy:  actor.UserID,
			}
			if err := repo.CreateHistoryEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status change")
			}
		}

		updates := fieldUpdates(input)
		if err := repo.UpdateOrder(ctx, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		order, err = repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Complete(ctx context.Context, actor auth.Actor, orderID string, input CompleteOrderInput) (*models.LocalOrder, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ScreenshotRef == nil || *input.ScreenshotRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion proof required")
	}

	var completed *models.LocalOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !actor.IsAdmin() && !actor.Owns(order.AssignedWorkerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another worker")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already completed")
		}

		updates := map[string]any{"screenshot_ref": *input.ScreenshotRef}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}

		rows, err := repo.CompleteOrder(ctx, orderID, order.Status, s.now().UTC(), updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}

		from := order.Status
		entry := &models.OrderHistoryEntry{
			OrderID:    orderID,
			StatusFrom: &from,
			StatusTo:   enums.OrderStatusCompleted,
			ChangedBy:  actor.UserID,
		}
		if err := repo.CreateHistoryEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completion")
		}

		order, err = repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		completed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.OrderType != nil && !filters.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type filter")
	}

	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, orderID string) (*OrderDetail, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	history, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}

	links, err := s.repo.ListFruitLinks(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fruit links")
	}

	return &OrderDetail{Order: *order, History: history, FruitLinks: links}, nil
}

func (s *service) History(ctx context.Context, actor auth.Actor, orderID string) ([]models.OrderHistoryEntry, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if _, err := s.repo.FindOrder(ctx, orderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	history, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	return history, nil
}

func (s *service) DistinctAccounts(ctx context.Context, actor auth.Actor) ([]string, error) {
	accounts, err := s.repo.DistinctAccounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return accounts, nil
}

// touchesRestrictedFields reports whether the patch reaches beyond the
// fields a worker may change on their own order.
func touchesRestrictedFields(input UpdateOrderInput) bool {
	return input.Platform != nil ||
		input.ClientUsername != nil ||
		input.ClientPassword != nil ||
		input.ClientEmail != nil ||
		input.OrderLink != nil ||
		input.AcceptedPrice != nil ||
		input.AldoradoAccount != nil
}

func fieldUpdates(input UpdateOrderInput) map[string]any {
	updates := map[string]any{}
	if input.Platform != nil {
		updates["platform"] = *input.Platform
	}
	if input.ClientUsername != nil {
		updates["client_username"] = *input.ClientUsername
	}
	if input.ClientPassword != nil {
		updates["client_password"] = *input.ClientPassword
	}
	if input.ClientEmail != nil {
		updates["client_email"] = *input.ClientEmail
	}
	if input.OrderLink != nil {
		updates["order_link"] = *input.OrderLink
	}
	if input.AcceptedPrice != nil {
		updates["accepted_price"] = *input.AcceptedPrice
	}
	if input.AldoradoAccount != nil {
		updates["aldorado_account"] = *input.AldoradoAccount
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	return updates
}
