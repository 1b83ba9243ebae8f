package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders    map[string]*models.LocalOrder
	history   []models.OrderHistoryEntry
	nextNum   int64
	claimRows int64
	compRows  int64
	transRows int64
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:    map[string]*models.LocalOrder{},
		claimRows: 1,
		compRows:  1,
		transRows: 1,
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	s.nextNum++
	return s.nextNum, nil
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.LocalOrder) (*models.LocalOrder, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateHistoryEntry(ctx context.Context, entry *models.OrderHistoryEntry) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID string) (*models.LocalOrder, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListHistory(ctx context.Context, orderID string) ([]models.OrderHistoryEntry, error) {
	return s.history, nil
}

func (s *stubOrdersRepo) ClaimOrder(ctx context.Context, orderID string, workerID uuid.UUID, from enums.OrderStatus) (int64, error) {
	if s.claimRows == 1 {
		if order, ok := s.orders[orderID]; ok && order.AssignedWorkerID == nil && order.Status == from {
			order.AssignedWorkerID = &workerID
			order.Status = enums.OrderStatusWorking
		}
	}
	return s.claimRows, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID string, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if notes, ok := updates["notes"].(string); ok {
		order.Notes = notes
	}
	return nil
}

func (s *stubOrdersRepo) TransitionStatus(ctx context.Context, orderID string, from, to enums.OrderStatus) (int64, error) {
	if s.transRows == 1 {
		if order, ok := s.orders[orderID]; ok {
			order.Status = to
		}
	}
	return s.transRows, nil
}

func (s *stubOrdersRepo) CompleteOrder(ctx context.Context, orderID string, from enums.OrderStatus, completedAt time.Time, updates map[string]any) (int64, error) {
	if s.compRows == 1 {
		if order, ok := s.orders[orderID]; ok && order.Status == from {
			order.Status = enums.OrderStatusCompleted
			order.CompletedAt = &completedAt
		}
	}
	return s.compRows, nil
}

func (s *stubOrdersRepo) DistinctAccounts(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubOrdersRepo) ListFruitLinks(ctx context.Context, orderID string) ([]models.FruitOrderLink, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type reserveCall struct {
	orderID string
	fruitID uuid.UUID
	qty     int
}

type stubReserver struct {
	calls []reserveCall
	err   error
}

func (s *stubReserver) Reserve(ctx context.Context, tx *gorm.DB, orderID string, fruitID uuid.UUID, qty int) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, reserveCall{orderID: orderID, fruitID: fruitID, qty: qty})
	return nil
}

func newTestOrdersService(t *testing.T, repo *stubOrdersRepo, reserver *stubReserver) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, reserver)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func adminActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func workerActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.RoleWorker}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCreateAllowsWorkers(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestOrdersService(t, repo, &stubReserver{})

	order, err := svc.Create(context.Background(), workerActor(), CreateOrderInput{
		ClientUsername: "client",
		OrderType:      enums.OrderTypeLeveling,
		AcceptedPrice:  decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != enums.OrderStatusNew {
		t.Fatalf("expected New, got %s", order.Status)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := newTestOrdersService(t, newStubOrdersRepo(), &stubReserver{})

	_, err := svc.Create(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.Role("ghost")}, CreateOrderInput{
		ClientUsername: "client",
		OrderType:      enums.OrderTypeLeveling,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestOrdersService(t, repo, &stubReserver{})
	actor := adminActor()

	first, err := svc.Create(context.Background(), actor, CreateOrderInput{
		ClientUsername: "alpha",
		OrderType:      enums.OrderTypeLeveling,
		AcceptedPrice:  decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), actor, CreateOrderInput{
		ClientUsername: "beta",
		OrderType:      enums.OrderTypeLeveling,
		AcceptedPrice:  decimal.NewFromInt(45),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.ID != "ORD-0001" || second.ID != "ORD-0002" {
		t.Fatalf("expected sequential ids, got %s and %s", first.ID, second.ID)
	}
	if first.Status != enums.OrderStatusNew {
		t.Fatalf("new orders must start as New, got %s", first.Status)
	}
	if len(repo.history) != 2 {
		t.Fatalf("expected a creation history entry per order, got %d", len(repo.history))
	}
	if repo.history[0].StatusFrom != nil {
		t.Fatal("creation entry must have no previous status")
	}
}

func TestCreateRejectsFruitLinesOnLevelingOrders(t *testing.T) {
	svc := newTestOrdersService(t, newStubOrdersRepo(), &stubReserver{})

	_, err := svc.Create(context.Background(), adminActor(), CreateOrderInput{
		ClientUsername: "client",
		OrderType:      enums.OrderTypeLeveling,
		FruitLines:     []FruitLine{{FruitID: uuid.New(), Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateReservesFruitStock(t *testing.T) {
	reserver := &stubReserver{}
	svc := newTestOrdersService(t, newStubOrdersRepo(), reserver)

	fruitID := uuid.New()
	order, err := svc.Create(context.Background(), adminActor(), CreateOrderInput{
		ClientUsername: "client",
		OrderType:      enums.OrderTypeFruit,
		AcceptedPrice:  decimal.NewFromInt(90),
		FruitLines:     []FruitLine{{FruitID: fruitID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(reserver.calls) != 1 {
		t.Fatalf("expected one reservation, got %d", len(reserver.calls))
	}
	call := reserver.calls[0]
	if call.orderID != order.ID || call.fruitID != fruitID || call.qty != 3 {
		t.Fatalf("unexpected reservation %+v", call)
	}
}

func TestCreateFailsWhenReservationFails(t *testing.T) {
	reserver := &stubReserver{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock")}
	svc := newTestOrdersService(t, newStubOrdersRepo(), reserver)

	_, err := svc.Create(context.Background(), adminActor(), CreateOrderInput{
		ClientUsername: "client",
		OrderType:      enums.OrderTypeFruit,
		AcceptedPrice:  decimal.NewFromInt(90),
		FruitLines:     []FruitLine{{FruitID: uuid.New(), Quantity: 3}},
	})
	assertCode(t, err, pkgerrors.CodeInsufficientStock)
}

func TestClaimRecordsHistory(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusNew}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	actor := workerActor()
	order, err := svc.Claim(context.Background(), actor, "ORD-0001")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if order.AssignedWorkerID == nil || *order.AssignedWorkerID != actor.UserID {
		t.Fatal("claim must assign the calling worker")
	}
	if len(repo.history) != 1 || repo.history[0].StatusTo != enums.OrderStatusWorking {
		t.Fatalf("expected a New->Working history entry, got %+v", repo.history)
	}
}

func TestClaimRequiresWorker(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusNew}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	_, err := svc.Claim(context.Background(), adminActor(), "ORD-0001")
	assertCode(t, err, pkgerrors.CodeForbidden)
	if repo.orders["ORD-0001"].AssignedWorkerID != nil {
		t.Fatal("rejected claim must not assign the order")
	}
}

func TestClaimUnassignedPostponedOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusPostponed}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	actor := workerActor()
	order, err := svc.Claim(context.Background(), actor, "ORD-0001")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if order.AssignedWorkerID == nil || *order.AssignedWorkerID != actor.UserID {
		t.Fatal("claim must assign the calling worker")
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(repo.history))
	}
	if repo.history[0].StatusFrom == nil || *repo.history[0].StatusFrom != enums.OrderStatusPostponed {
		t.Fatalf("expected Postponed as previous status, got %+v", repo.history[0])
	}
}

func TestClaimCompletedOrderRejected(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusCompleted}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	_, err := svc.Claim(context.Background(), workerActor(), "ORD-0001")
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestClaimConcurrentLoserGetsConflict(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.claimRows = 0
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusNew}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	_, err := svc.Claim(context.Background(), workerActor(), "ORD-0001")
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(repo.history) != 0 {
		t.Fatal("losing claim must not write history")
	}
}

func TestClaimLoserGetsConflict(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.claimRows = 0
	otherWorker := uuid.New()
	repo.orders["ORD-0001"] = &models.LocalOrder{
		ID:               "ORD-0001",
		Status:           enums.OrderStatusWorking,
		AssignedWorkerID: &otherWorker,
	}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	_, err := svc.Claim(context.Background(), workerActor(), "ORD-0001")
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestClaimMissingOrderNotFound(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.claimRows = 0
	svc := newTestOrdersService(t, repo, &stubReserver{})

	_, err := svc.Claim(context.Background(), workerActor(), "ORD-9999")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateRejectsDirectCompletion(t *testing.T) {
	svc := newTestOrdersService(t, newStubOrdersRepo(), &stubReserver{})

	completed := enums.OrderStatusCompleted
	_, err := svc.Update(context.Background(), adminActor(), "ORD-0001", UpdateOrderInput{Status: &completed})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateBlocksTerminalOrders(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusCompleted}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	notes := "late edit"
	_, err := svc.Update(context.Background(), adminActor(), "ORD-0001", UpdateOrderInput{Notes: &notes})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateForbiddenForOtherWorker(t *testing.T) {
	repo := newStubOrdersRepo()
	owner := uuid.New()
	repo.orders["ORD-0001"] = &models.LocalOrder{
		ID:               "ORD-0001",
		Status:           enums.OrderStatusWorking,
		AssignedWorkerID: &owner,
	}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	notes := "not mine"
	_, err := svc.Update(context.Background(), workerActor(), "ORD-0001", UpdateOrderInput{Notes: &notes})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateStatusRecordsTransition(t *testing.T) {
	repo := newStubOrdersRepo()
	actor := workerActor()
	repo.orders["ORD-0001"] = &models.LocalOrder{
		ID:               "ORD-0001",
		Status:           enums.OrderStatusWorking,
		AssignedWorkerID: &actor.UserID,
	}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	postponed := enums.OrderStatusPostponed
	order, err := svc.Update(context.Background(), actor, "ORD-0001", UpdateOrderInput{Status: &postponed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if order.Status != enums.OrderStatusPostponed {
		t.Fatalf("expected Postponed, got %s", order.Status)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(repo.history))
	}
	if repo.history[0].StatusFrom == nil || *repo.history[0].StatusFrom != enums.OrderStatusWorking {
		t.Fatalf("expected Working as previous status, got %+v", repo.history[0])
	}
}

func TestCompleteRequiresProof(t *testing.T) {
	svc := newTestOrdersService(t, newStubOrdersRepo(), &stubReserver{})

	_, err := svc.Complete(context.Background(), adminActor(), "ORD-0001", CompleteOrderInput{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCompleteSecondCallConflicts(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.compRows = 0
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusCompleted}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	shot := "proof.png"
	_, err := svc.Complete(context.Background(), adminActor(), "ORD-0001", CompleteOrderInput{ScreenshotRef: &shot})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCompleteConcurrentChangeConflicts(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.compRows = 0
	repo.orders["ORD-0001"] = &models.LocalOrder{ID: "ORD-0001", Status: enums.OrderStatusWorking}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	shot := "proof.png"
	_, err := svc.Complete(context.Background(), adminActor(), "ORD-0001", CompleteOrderInput{ScreenshotRef: &shot})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	if len(repo.history) != 0 {
		t.Fatal("losing completion must not write history")
	}
}

func TestUpdateWorkerCannotTouchFinancialFields(t *testing.T) {
	repo := newStubOrdersRepo()
	actor := workerActor()
	repo.orders["ORD-0001"] = &models.LocalOrder{
		ID:               "ORD-0001",
		Status:           enums.OrderStatusWorking,
		AssignedWorkerID: &actor.UserID,
	}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	price := decimal.NewFromInt(999)
	_, err := svc.Update(context.Background(), actor, "ORD-0001", UpdateOrderInput{AcceptedPrice: &price})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCompleteStampsCompletion(t *testing.T) {
	repo := newStubOrdersRepo()
	actor := workerActor()
	repo.orders["ORD-0001"] = &models.LocalOrder{
		ID:               "ORD-0001",
		Status:           enums.OrderStatusWorking,
		AssignedWorkerID: &actor.UserID,
	}
	svc := newTestOrdersService(t, repo, &stubReserver{})

	shot := "proof.png"
	order, err := svc.Complete(context.Background(), actor, "ORD-0001", CompleteOrderInput{ScreenshotRef: &shot})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if order.Status != enums.OrderStatusCompleted || order.CompletedAt == nil {
		t.Fatalf("expected completed order with timestamp, got %+v", order)
	}
	if len(repo.history) != 1 || repo.history[0].StatusTo != enums.OrderStatusCompleted {
		t.Fatalf("expected completion history entry, got %+v", repo.history)
	}
	if repo.history[0].StatusFrom == nil || *repo.history[0].StatusFrom != enums.OrderStatusWorking {
		t.Fatalf("expected Working as previous status, got %+v", repo.history[0])
	}
}
