package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
)

// weeklyDays is the window length of the weekly report.
const weeklyDays = 7

// Service defines the reporting operations.
type Service interface {
	Daily(ctx context.Context, actor auth.Actor, date time.Time) (*DayStats, error)
	Weekly(ctx context.Context, actor auth.Actor, endDate time.Time) ([]DayStats, error)
	WorkerStats(ctx context.Context, actor auth.Actor) ([]WorkerStats, error)
	Sessions(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.WorkSession, error)
}

type service struct {
	repo Repository
}

// NewService builds an analytics service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo}, nil
}

// Daily aggregates orders created on the given calendar day (UTC).
func (s *service) Daily(ctx context.Context, actor auth.Actor, date time.Time) (*DayStats, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can view reports")
	}

	stats, err := s.statsForDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Weekly returns the seven days ending on endDate, oldest first.
func (s *service) Weekly(ctx context.Context, actor auth.Actor, endDate time.Time) ([]DayStats, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can view reports")
	}

	stats := make([]DayStats, 0, weeklyDays)
	for i := weeklyDays - 1; i >= 0; i-- {
		day, err := s.statsForDay(ctx, endDate.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		stats = append(stats, *day)
	}
	return stats, nil
}

func (s *service) WorkerStats(ctx context.Context, actor auth.Actor) ([]WorkerStats, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can view reports")
	}

	rows, err := s.repo.WorkerOrderStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker order stats")
	}

	stats := make([]WorkerStats, 0, len(rows))
	for _, row := range rows {
		minutes, err := s.repo.WorkerMinutes(ctx, row.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker minutes")
		}

		hours := float64(minutes) / 60
		perHour := 0.0
		if hours > 0 {
			perHour = round2(float64(row.CompletedOrders) / hours)
		}

		stats = append(stats, WorkerStats{
			WorkerOrderRow: row,
			HoursWorked:    round2(hours),
			OrdersPerHour:  perHour,
		})
	}
	return stats, nil
}

// Sessions lists tracked work sessions. Workers can only read their own.
func (s *service) Sessions(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.WorkSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sessions belong to another worker")
	}

	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list work sessions")
	}
	return sessions, nil
}

func (s *service) statsForDay(ctx context.Context, date time.Time) (*DayStats, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	next := day.AddDate(0, 0, 1)

	orders, err := s.repo.OrdersCreatedBetween(ctx, day, next)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for day")
	}

	stats := &DayStats{
		Date:    day.Format("2006-01-02"),
		Revenue: decimal.Zero,
		ByType:  map[enums.OrderType]int{},
	}
	for _, o := range orders {
		stats.NewOrders++
		stats.Revenue = stats.Revenue.Add(o.AcceptedPrice)
		if o.Status == enums.OrderStatusCompleted {
			stats.Completed++
		}
		stats.ByType[o.OrderType]++
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
