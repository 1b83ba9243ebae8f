package eldorado

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// orderCreator opens a local order inside the conversion transaction.
// Implemented by the orders service.
type orderCreator interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, actor auth.Actor, input orders.CreateOrderInput) (*models.LocalOrder, error)
}

// Service defines operations on the marketplace staging table.
type Service interface {
	Import(ctx context.Context, actor auth.Actor, input ImportInput) (*ImportResult, error)
	ListPending(ctx context.Context, actor auth.Actor) ([]models.EldoradoOrder, error)
	Convert(ctx context.Context, actor auth.Actor, eldoradoID string, input ConvertInput) (*ConvertResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	orders orderCreator
}

// NewService builds an eldorado service with the required dependencies.
func NewService(repo Repository, tx txRunner, orderSvc orderCreator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("eldorado repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order creator required")
	}
	return &service{repo: repo, tx: tx, orders: orderSvc}, nil
}

// Import stages a batch of marketplace orders. Re-imported rows refresh
// their fields unless the row was already converted, which is left alone.
func (s *service) Import(ctx context.Context, actor auth.Actor, input ImportInput) (*ImportResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can import orders")
	}
	if len(input.Orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no orders to import")
	}
	for i, row := range input.Orders {
		if strings.TrimSpace(row.EldoradoID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("row %d is missing an eldorado id", i))
		}
		if row.State != "" && !row.State.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("row %d has invalid state %q", i, row.State))
		}
		if row.AcceptedPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("row %d has a negative price", i))
		}
	}

	result := &ImportResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, row := range input.Orders {
			state := row.State
			if state == "" {
				state = enums.EldoradoStatePendingDelivery
			}

			existing, err := repo.FindOrder(ctx, row.EldoradoID)
			if err == gorm.ErrRecordNotFound {
				order := &models.EldoradoOrder{
					EldoradoID:    row.EldoradoID,
					BuyerUsername: row.BuyerUsername,
					AcceptedPrice: row.AcceptedPrice,
					OrderLink:     row.OrderLink,
					State:         state,
				}
				if err := repo.CreateOrder(ctx, order); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage eldorado order")
				}
				result.Imported++
				continue
			}
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eldorado order")
			}

			if existing.ConvertedToLocalID != nil {
				result.Skipped++
				continue
			}

			updates := map[string]any{
				"buyer_username": row.BuyerUsername,
				"accepted_price": row.AcceptedPrice,
				"order_link":     row.OrderLink,
				"state":          state,
			}
			if err := repo.UpdateOrder(ctx, row.EldoradoID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh eldorado order")
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListPending(ctx context.Context, actor auth.Actor) ([]models.EldoradoOrder, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can view staged orders")
	}
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}
	return pending, nil
}

// Convert turns a staged marketplace order into a local order. The guarded
// stamp makes conversion single-winner; losing the race rolls the whole
// transaction back, including the freshly created local order.
func (s *service) Convert(ctx context.Context, actor auth.Actor, eldoradoID string, input ConvertInput) (*ConvertResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can convert orders")
	}
	if strings.TrimSpace(eldoradoID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "eldorado id required")
	}

	var result *ConvertResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		staged, err := repo.FindOrder(ctx, eldoradoID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "eldorado order not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eldorado order")
		}
		if staged.ConvertedToLocalID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already converted")
		}

		ref := staged.EldoradoID
		local, err := s.orders.CreateInTx(ctx, tx, actor, orders.CreateOrderInput{
			Platform:         "Eldorado",
			EldoradoRef:      &ref,
			ClientUsername:   staged.BuyerUsername,
			OrderType:        enums.OrderTypeLeveling,
			OrderLink:        staged.OrderLink,
			AcceptedPrice:    staged.AcceptedPrice,
			AssignedWorkerID: input.AssignedWorkerID,
		})
		if err != nil {
			return err
		}

		rows, err := repo.MarkConverted(ctx, eldoradoID, local.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp conversion")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already converted")
		}

		result = &ConvertResult{LocalOrderID: local.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
