package campaigns

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service defines bonus campaign operations.
type Service interface {
	ListWithProgress(ctx context.Context, actor auth.Actor) ([]CampaignProgress, error)
	Create(ctx context.Context, actor auth.Actor, input CreateCampaignInput) (*models.Campaign, error)
	Toggle(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ToggleResult, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a campaigns service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	return &service{repo: repo}, nil
}

// ListWithProgress returns campaigns with progress computed from completed
// orders in each campaign window. Workers see active campaigns with their
// own progress; admins see every campaign with the aggregate across workers.
func (s *service) ListWithProgress(ctx context.Context, actor auth.Actor) ([]CampaignProgress, error) {
	activeOnly := !actor.IsAdmin()

	var scope *uuid.UUID
	if !actor.IsAdmin() {
		workerID := actor.UserID
		scope = &workerID
	}

	campaigns, err := s.repo.ListCampaigns(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}

	results := make([]CampaignProgress, 0, len(campaigns))
	for _, c := range campaigns {
		progress := decimal.Zero

		switch c.Type {
		case enums.CampaignTypeOrderCount:
			count, err := s.repo.CountCompletedOrders(ctx, scope, c.StartDate, c.EndDate)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed orders")
			}
			progress = decimal.NewFromInt(count)
		case enums.CampaignTypeRevenueSum:
			total, err := s.repo.SumCompletedRevenue(ctx, scope, c.StartDate, c.EndDate)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum completed revenue")
			}
			progress = total
		}

		results = append(results, CampaignProgress{
			Campaign:  c,
			Progress:  progress,
			Completed: progress.GreaterThanOrEqual(c.TargetValue),
		})
	}
	return results, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateCampaignInput) (*models.Campaign, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create campaigns")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign type")
	}
	if !input.TargetValue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target value must be positive")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates required")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must follow start date")
	}

	campaign := &models.Campaign{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        input.Type,
		TargetValue: input.TargetValue,
		Reward:      input.Reward,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    true,
	}
	if _, err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}
	return campaign, nil
}

func (s *service) Toggle(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ToggleResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can toggle campaigns")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}

	campaign, err := s.repo.FindCampaign(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}

	next := !campaign.IsActive
	if _, err := s.repo.SetActive(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle campaign")
	}

	campaign.IsActive = next
	return &ToggleResult{Campaign: *campaign, IsActive: next}, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete campaigns")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}

	rows, err := s.repo.DeleteCampaign(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	return nil
}
