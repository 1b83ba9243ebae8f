package fruits

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// setRetries bounds the compare-and-swap loop for set-mode corrections.
const setRetries = 3

// fruitNameRe pulls the SKU name out of a notification message. The hyphen
// keeps names like T-Rex intact.
var fruitNameRe = regexp.MustCompile(`(?i)found fruit:\s*([\w\s-]+)`)

// Service defines fruit catalog and stock ledger operations.
type Service interface {
	List(ctx context.Context, actor auth.Actor) ([]models.FruitSku, error)
	Upsert(ctx context.Context, actor auth.Actor, input UpsertSkuInput) (*models.FruitSku, error)
	AdjustStock(ctx context.Context, actor auth.Actor, fruitID uuid.UUID, input AdjustStockInput) (*AdjustStockResult, error)
	Events(ctx context.Context, actor auth.Actor, fruitID uuid.UUID) ([]models.FruitStockEvent, error)
	Reserve(ctx context.Context, tx *gorm.DB, orderID string, fruitID uuid.UUID, qty int) error
	ReserveForOrder(ctx context.Context, actor auth.Actor, orderID string, fruitID uuid.UUID, qty int) (*models.FruitSku, error)
	IngestWebhookReport(ctx context.Context, report WebhookReport) (*WebhookResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a fruits service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fruits repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]models.FruitSku, error) {
	skus, err := s.repo.ListSkus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fruit skus")
	}
	return skus, nil
}

func (s *service) Upsert(ctx context.Context, actor auth.Actor, input UpsertSkuInput) (*models.FruitSku, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage the catalog")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit name required")
	}
	if !input.Rarity.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rarity")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	if input.ID != nil {
		updates := map[string]any{
			"name":      input.Name,
			"image_ref": input.ImageRef,
			"rarity":    input.Rarity,
			"price":     input.Price,
		}
		if err := s.repo.UpdateSku(ctx, *input.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fruit sku")
		}
		sku, err := s.repo.FindSku(ctx, *input.ID)
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload fruit sku")
		}
		return sku, nil
	}

	if _, err := s.repo.FindSkuByName(ctx, input.Name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "fruit name already exists")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check fruit name")
	}

	sku := &models.FruitSku{
		Name:     strings.TrimSpace(input.Name),
		ImageRef: input.ImageRef,
		Rarity:   input.Rarity,
		Price:    input.Price,
	}
	if _, err := s.repo.CreateSku(ctx, sku); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fruit sku")
	}
	return sku, nil
}

func (s *service) AdjustStock(ctx context.Context, actor auth.Actor, fruitID uuid.UUID, input AdjustStockInput) (*AdjustStockResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can adjust stock")
	}
	if fruitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit id required")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock change mode")
	}

	amount := input.Amount
	switch input.Mode {
	case enums.StockChangeModeSet:
		if amount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
	default:
		// increment and decrement default to one unit, matching the
		// quick-adjust buttons.
		if amount == 0 {
			amount = 1
		}
		if amount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
		}
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = "Manual Update"
	}

	var result *AdjustStockResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		switch input.Mode {
		case enums.StockChangeModeSet:
			return s.setQuantity(ctx, repo, fruitID, amount, reason, &result)
		case enums.StockChangeModeIncrement:
			return s.applyDelta(ctx, repo, fruitID, amount, reason, &result)
		default:
			return s.applyDelta(ctx, repo, fruitID, -amount, reason, &result)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) setQuantity(ctx context.Context, repo Repository, fruitID uuid.UUID, target int, reason string, out **AdjustStockResult) error {
	for attempt := 0; attempt < setRetries; attempt++ {
		sku, err := repo.FindSku(ctx, fruitID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fruit sku")
		}

		delta := target - sku.Quantity
		if delta == 0 {
			*out = &AdjustStockResult{Sku: *sku, ChangeDelta: 0}
			return nil
		}

		rows, err := repo.SetQuantityCAS(ctx, fruitID, sku.Quantity, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set quantity")
		}
		if rows == 0 {
			continue
		}

		if err := repo.CreateStockEvent(ctx, &models.FruitStockEvent{
			FruitID:      fruitID,
			ChangeAmount: delta,
			Reason:       reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock event")
		}

		sku.Quantity = target
		*out = &AdjustStockResult{Sku: *sku, ChangeDelta: delta}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "stock changed concurrently, retry")
}

func (s *service) applyDelta(ctx context.Context, repo Repository, fruitID uuid.UUID, delta int, reason string, out **AdjustStockResult) error {
	rows, err := repo.AdjustQuantityGuarded(ctx, fruitID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust quantity")
	}
	if rows == 0 {
		if _, err := repo.FindSku(ctx, fruitID); err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fruit sku")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock")
	}

	if err := repo.CreateStockEvent(ctx, &models.FruitStockEvent{
		FruitID:      fruitID,
		ChangeAmount: delta,
		Reason:       reason,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock event")
	}

	sku, err := repo.FindSku(ctx, fruitID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload fruit sku")
	}
	*out = &AdjustStockResult{Sku: *sku, ChangeDelta: delta}
	return nil
}

func (s *service) Events(ctx context.Context, actor auth.Actor, fruitID uuid.UUID) ([]models.FruitStockEvent, error) {
	if fruitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit id required")
	}
	if _, err := s.repo.FindSku(ctx, fruitID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fruit sku")
	}

	events, err := s.repo.ListStockEvents(ctx, fruitID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock events")
	}
	return events, nil
}

// Reserve consumes qty units for the order inside the caller's transaction.
// The guarded decrement keeps quantity non-negative under concurrent orders.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, orderID string, fruitID uuid.UUID, qty int) error {
	if orderID == "" || fruitID == uuid.Nil || qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation needs an order, a sku and a positive quantity")
	}

	repo := s.repo.WithTx(tx)

	rows, err := repo.AdjustQuantityGuarded(ctx, fruitID, -qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	if rows == 0 {
		if _, err := repo.FindSku(ctx, fruitID); err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fruit sku")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock")
	}

	if err := repo.CreateOrderLink(ctx, &models.FruitOrderLink{
		LocalOrderID: orderID,
		FruitID:      fruitID,
		Quantity:     qty,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link fruit to order")
	}

	if err := repo.CreateStockEvent(ctx, &models.FruitStockEvent{
		FruitID:      fruitID,
		ChangeAmount: -qty,
		Reason:       fmt.Sprintf("Order %s", orderID),
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock event")
	}
	return nil
}

// ReserveForOrder consumes stock for an existing order in its own
// transaction, for lines added after the order was created.
func (s *service) ReserveForOrder(ctx context.Context, actor auth.Actor, orderID string, fruitID uuid.UUID, qty int) (*models.FruitSku, error) {
	if !actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	var sku *models.FruitSku
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.Reserve(ctx, tx, orderID, fruitID, qty); err != nil {
			return err
		}
		loaded, err := s.repo.WithTx(tx).FindSku(ctx, fruitID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload fruit sku")
		}
		sku = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sku, nil
}

// IngestWebhookReport resolves the fruit named in an external notification
// and bumps its stock by one. Resolution fails closed: an unknown name and
// an ambiguous one are both rejected rather than guessed.
func (s *service) IngestWebhookReport(ctx context.Context, report WebhookReport) (*WebhookResult, error) {
	name, err := ParseFruitReport(report.Content)
	if err != nil {
		return nil, err
	}

	var result *WebhookResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sku, err := s.resolveSku(ctx, repo, name)
		if err != nil {
			return err
		}

		rows, err := repo.AdjustQuantityGuarded(ctx, sku.ID, 1)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "stock update touched no rows")
		}

		if err := repo.CreateStockEvent(ctx, &models.FruitStockEvent{
			FruitID:      sku.ID,
			ChangeAmount: 1,
			Reason:       "Discord Webhook",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock event")
		}

		sku.Quantity++
		result = &WebhookResult{
			Sku:     *sku,
			Message: fmt.Sprintf("Stock updated for %s", sku.Name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseFruitReport extracts the fruit name from a notification message of
// the form "Found fruit: NAME".
func ParseFruitReport(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}
	match := fruitNameRe.FindStringSubmatch(content)
	if match == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "no fruit name found in content")
	}
	name := strings.TrimSpace(match[1])
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "no fruit name found in content")
	}
	return name, nil
}

func (s *service) resolveSku(ctx context.Context, repo Repository, name string) (*models.FruitSku, error) {
	sku, err := repo.FindSkuByName(ctx, name)
	if err == nil {
		return sku, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve fruit name")
	}

	candidates, err := repo.SearchSkusByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search fruit names")
	}
	switch len(candidates) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("fruit %q not found", name))
	case 1:
		return &candidates[0], nil
	default:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		return nil, pkgerrors.New(pkgerrors.CodeAmbiguous, fmt.Sprintf("fruit %q matches multiple skus", name)).
			WithDetails(map[string]any{"candidates": names})
	}
}
