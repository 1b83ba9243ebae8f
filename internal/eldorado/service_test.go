package eldorado

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
)

type stubEldoradoRepo struct {
	orders       map[string]*models.EldoradoOrder
	convertRows  int64
	updateCalled bool
}

func newStubEldoradoRepo() *stubEldoradoRepo {
	return &stubEldoradoRepo{orders: map[string]*models.EldoradoOrder{}, convertRows: 1}
}

func (s *stubEldoradoRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubEldoradoRepo) FindOrder(ctx context.Context, eldoradoID string) (*models.EldoradoOrder, error) {
	order, ok := s.orders[eldoradoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubEldoradoRepo) ListPending(ctx context.Context) ([]models.EldoradoOrder, error) {
	var out []models.EldoradoOrder
	for _, order := range s.orders {
		if order.ConvertedToLocalID == nil {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubEldoradoRepo) CreateOrder(ctx context.Context, order *models.EldoradoOrder) error {
	copied := *order
	s.orders[order.EldoradoID] = &copied
	return nil
}

func (s *stubEldoradoRepo) UpdateOrder(ctx context.Context, eldoradoID string, updates map[string]any) error {
	s.updateCalled = true
	order, ok := s.orders[eldoradoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if buyer, ok := updates["buyer_username"].(string); ok {
		order.BuyerUsername = buyer
	}
	return nil
}

func (s *stubEldoradoRepo) MarkConverted(ctx context.Context, eldoradoID, localOrderID string) (int64, error) {
	if s.convertRows == 1 {
		if order, ok := s.orders[eldoradoID]; ok {
			order.ConvertedToLocalID = &localOrderID
		}
	}
	return s.convertRows, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderCreator struct {
	lastInput orders.CreateOrderInput
	err       error
}

func (s *stubOrderCreator) CreateInTx(ctx context.Context, tx *gorm.DB, actor auth.Actor, input orders.CreateOrderInput) (*models.LocalOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastInput = input
	return &models.LocalOrder{
		ID:               "ORD-0042",
		Platform:         input.Platform,
		EldoradoRef:      input.EldoradoRef,
		ClientUsername:   input.ClientUsername,
		OrderType:        input.OrderType,
		AcceptedPrice:    input.AcceptedPrice,
		AssignedWorkerID: input.AssignedWorkerID,
		Status:           enums.OrderStatusNew,
	}, nil
}

func newTestEldoradoService(t *testing.T, repo *stubEldoradoRepo, creator *stubOrderCreator) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, creator)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func admin() auth.Actor  { return auth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin} }
func worker() auth.Actor { return auth.Actor{UserID: uuid.New(), Role: enums.RoleWorker} }

func wantCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error with code %s, got %v", code, err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestImportRequiresAdmin(t *testing.T) {
	svc := newTestEldoradoService(t, newStubEldoradoRepo(), &stubOrderCreator{})

	_, err := svc.Import(context.Background(), worker(), ImportInput{
		Orders: []ImportRow{{EldoradoID: "ELD-1"}},
	})
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestImportCountsNewUpdatedSkipped(t *testing.T) {
	repo := newStubEldoradoRepo()
	converted := "ORD-0001"
	repo.orders["ELD-2"] = &models.EldoradoOrder{EldoradoID: "ELD-2", BuyerUsername: "old"}
	repo.orders["ELD-3"] = &models.EldoradoOrder{EldoradoID: "ELD-3", ConvertedToLocalID: &converted, BuyerUsername: "keep"}
	svc := newTestEldoradoService(t, repo, &stubOrderCreator{})

	result, err := svc.Import(context.Background(), admin(), ImportInput{
		Orders: []ImportRow{
			{EldoradoID: "ELD-1", BuyerUsername: "fresh", AcceptedPrice: decimal.NewFromInt(20)},
			{EldoradoID: "ELD-2", BuyerUsername: "refreshed", AcceptedPrice: decimal.NewFromInt(30)},
			{EldoradoID: "ELD-3", BuyerUsername: "clobber", AcceptedPrice: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 1 || result.Updated != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1/1/1, got %d/%d/%d", result.Imported, result.Updated, result.Skipped)
	}
	if repo.orders["ELD-2"].BuyerUsername != "refreshed" {
		t.Fatal("pending row must refresh on re-import")
	}
	if repo.orders["ELD-3"].BuyerUsername != "keep" {
		t.Fatal("converted row must never be touched by an import")
	}
	if repo.orders["ELD-1"].State != enums.EldoradoStatePendingDelivery {
		t.Fatalf("empty state defaults to Pending Delivery, got %q", repo.orders["ELD-1"].State)
	}
}

func TestImportRejectsMissingID(t *testing.T) {
	svc := newTestEldoradoService(t, newStubEldoradoRepo(), &stubOrderCreator{})

	_, err := svc.Import(context.Background(), admin(), ImportInput{
		Orders: []ImportRow{{EldoradoID: "  "}},
	})
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestConvertCreatesLocalOrder(t *testing.T) {
	repo := newStubEldoradoRepo()
	repo.orders["ELD-1"] = &models.EldoradoOrder{
		EldoradoID:    "ELD-1",
		BuyerUsername: "buyer",
		AcceptedPrice: decimal.NewFromInt(55),
		OrderLink:     "https://eldorado.gg/order/1",
	}
	creator := &stubOrderCreator{}
	svc := newTestEldoradoService(t, repo, creator)

	workerID := uuid.New()
	result, err := svc.Convert(context.Background(), admin(), "ELD-1", ConvertInput{AssignedWorkerID: &workerID})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.LocalOrderID != "ORD-0042" {
		t.Fatalf("unexpected local order id %q", result.LocalOrderID)
	}
	if creator.lastInput.Platform != "Eldorado" {
		t.Fatalf("converted orders carry the Eldorado platform, got %q", creator.lastInput.Platform)
	}
	if creator.lastInput.EldoradoRef == nil || *creator.lastInput.EldoradoRef != "ELD-1" {
		t.Fatal("converted orders must reference the staging row")
	}
	if creator.lastInput.AssignedWorkerID == nil || *creator.lastInput.AssignedWorkerID != workerID {
		t.Fatal("assignment made during conversion must carry over")
	}
	if repo.orders["ELD-1"].ConvertedToLocalID == nil {
		t.Fatal("staging row must be stamped with the local order id")
	}
}

func TestConvertAlreadyConvertedConflicts(t *testing.T) {
	repo := newStubEldoradoRepo()
	converted := "ORD-0001"
	repo.orders["ELD-1"] = &models.EldoradoOrder{EldoradoID: "ELD-1", ConvertedToLocalID: &converted}
	svc := newTestEldoradoService(t, repo, &stubOrderCreator{})

	_, err := svc.Convert(context.Background(), admin(), "ELD-1", ConvertInput{})
	wantCode(t, err, pkgerrors.CodeConflict)
}

func TestConvertRaceLoserConflicts(t *testing.T) {
	repo := newStubEldoradoRepo()
	repo.convertRows = 0
	repo.orders["ELD-1"] = &models.EldoradoOrder{EldoradoID: "ELD-1", BuyerUsername: "buyer"}
	svc := newTestEldoradoService(t, repo, &stubOrderCreator{})

	_, err := svc.Convert(context.Background(), admin(), "ELD-1", ConvertInput{})
	wantCode(t, err, pkgerrors.CodeConflict)
}

func TestConvertMissingRowNotFound(t *testing.T) {
	svc := newTestEldoradoService(t, newStubEldoradoRepo(), &stubOrderCreator{})

	_, err := svc.Convert(context.Background(), admin(), "ELD-404", ConvertInput{})
	wantCode(t, err, pkgerrors.CodeNotFound)
}

func TestConvertRequiresAdmin(t *testing.T) {
	svc := newTestEldoradoService(t, newStubEldoradoRepo(), &stubOrderCreator{})

	_, err := svc.Convert(context.Background(), worker(), "ELD-1", ConvertInput{})
	wantCode(t, err, pkgerrors.CodeForbidden)
}
