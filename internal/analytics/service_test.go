package analytics

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
)

type stubAnalyticsRepo struct {
	orders   []models.LocalOrder
	rows     []WorkerOrderRow
	minutes  map[uuid.UUID]int64
	sessions []models.WorkSession
}

func newStubAnalyticsRepo() *stubAnalyticsRepo {
	return &stubAnalyticsRepo{minutes: map[uuid.UUID]int64{}}
}

func (s *stubAnalyticsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAnalyticsRepo) OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]models.LocalOrder, error) {
	var out []models.LocalOrder
	for _, o := range s.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubAnalyticsRepo) WorkerOrderStats(ctx context.Context) ([]WorkerOrderRow, error) {
	return s.rows, nil
}

func (s *stubAnalyticsRepo) WorkerMinutes(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.minutes[userID], nil
}

func (s *stubAnalyticsRepo) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.WorkSession, error) {
	return s.sessions, nil
}

func newTestAnalyticsService(t *testing.T, repo *stubAnalyticsRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
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

func TestDailyAggregatesOneDay(t *testing.T) {
	repo := newStubAnalyticsRepo()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	repo.orders = []models.LocalOrder{
		{ID: "ORD-0001", OrderType: enums.OrderTypeLeveling, AcceptedPrice: decimal.NewFromInt(30), Status: enums.OrderStatusCompleted, CreatedAt: day.Add(2 * time.Hour)},
		{ID: "ORD-0002", OrderType: enums.OrderTypeFruit, AcceptedPrice: decimal.NewFromInt(45), Status: enums.OrderStatusWorking, CreatedAt: day.Add(5 * time.Hour)},
		{ID: "ORD-0003", OrderType: enums.OrderTypeLeveling, AcceptedPrice: decimal.NewFromInt(10), Status: enums.OrderStatusNew, CreatedAt: day.AddDate(0, 0, 1)},
	}
	svc := newTestAnalyticsService(t, repo)

	stats, err := svc.Daily(context.Background(), admin(), day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if stats.Date != "2025-06-15" {
		t.Fatalf("unexpected date %q", stats.Date)
	}
	if stats.NewOrders != 2 || stats.Completed != 1 {
		t.Fatalf("expected 2 new / 1 completed, got %d / %d", stats.NewOrders, stats.Completed)
	}
	if !stats.Revenue.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected revenue 75, got %s", stats.Revenue)
	}
	if stats.ByType[enums.OrderTypeLeveling] != 1 || stats.ByType[enums.OrderTypeFruit] != 1 {
		t.Fatalf("unexpected type breakdown %+v", stats.ByType)
	}
}

func TestDailyRequiresAdmin(t *testing.T) {
	svc := newTestAnalyticsService(t, newStubAnalyticsRepo())

	_, err := svc.Daily(context.Background(), worker(), time.Now())
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestWeeklyReturnsSevenDaysOldestFirst(t *testing.T) {
	svc := newTestAnalyticsService(t, newStubAnalyticsRepo())

	end := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	days, err := svc.Weekly(context.Background(), admin(), end)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2025-06-09" || days[6].Date != "2025-06-15" {
		t.Fatalf("expected 2025-06-09..2025-06-15, got %s..%s", days[0].Date, days[6].Date)
	}
}

func TestWorkerStatsComputesRates(t *testing.T) {
	repo := newStubAnalyticsRepo()
	workerID := uuid.New()
	repo.rows = []WorkerOrderRow{{
		UserID:           workerID,
		Username:         "ana",
		TotalOrders:      12,
		CompletedOrders:  9,
		RevenueGenerated: decimal.NewFromInt(300),
	}}
	repo.minutes[workerID] = 270 // 4.5 hours
	svc := newTestAnalyticsService(t, repo)

	stats, err := svc.WorkerStats(context.Background(), admin())
	if err != nil {
		t.Fatalf("worker stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one row, got %d", len(stats))
	}
	if stats[0].HoursWorked != 4.5 {
		t.Fatalf("expected 4.5 hours, got %v", stats[0].HoursWorked)
	}
	if stats[0].OrdersPerHour != 2 {
		t.Fatalf("expected 2 orders/hour, got %v", stats[0].OrdersPerHour)
	}
}

func TestWorkerStatsZeroHoursZeroRate(t *testing.T) {
	repo := newStubAnalyticsRepo()
	workerID := uuid.New()
	repo.rows = []WorkerOrderRow{{UserID: workerID, Username: "ana", CompletedOrders: 3}}
	svc := newTestAnalyticsService(t, repo)

	stats, err := svc.WorkerStats(context.Background(), admin())
	if err != nil {
		t.Fatalf("worker stats: %v", err)
	}
	if stats[0].OrdersPerHour != 0 {
		t.Fatalf("no tracked time means no rate, got %v", stats[0].OrdersPerHour)
	}
}

func TestSessionsWorkerReadsOwnOnly(t *testing.T) {
	repo := newStubAnalyticsRepo()
	actor := worker()
	repo.sessions = []models.WorkSession{{ID: uuid.New(), UserID: actor.UserID}}
	svc := newTestAnalyticsService(t, repo)

	sessions, err := svc.Sessions(context.Background(), actor, actor.UserID)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}

	_, err = svc.Sessions(context.Background(), actor, uuid.New())
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestSessionsAdminReadsAnyone(t *testing.T) {
	repo := newStubAnalyticsRepo()
	repo.sessions = []models.WorkSession{{ID: uuid.New(), UserID: uuid.New()}}
	svc := newTestAnalyticsService(t, repo)

	if _, err := svc.Sessions(context.Background(), admin(), uuid.New()); err != nil {
		t.Fatalf("sessions: %v", err)
	}
}
