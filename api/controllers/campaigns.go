package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalcampaigns "github.com/boosthq/boosthq-backend/internal/campaigns"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

type createCampaignRequest struct {
	Title       string          `json:"title" validate:"required,max=128"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	Type        string          `json:"type" validate:"required,oneof=order_count revenue_sum"`
	TargetValue decimal.Decimal `json:"target_value" validate:"required"`
	Reward      string          `json:"reward" validate:"omitempty,max=256"`
	StartDate   time.Time       `json:"start_date" validate:"required"`
	EndDate     time.Time       `json:"end_date" validate:"required"`
}

type toggleCampaignResponse struct {
	Campaign CampaignView `json:"campaign"`
	IsActive bool         `json:"is_active"`
}

// CampaignList returns campaigns with the caller's progress. Workers see
// active campaigns only; admins see all of them.
func CampaignList(svc internalcampaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaigns service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.ListWithProgress(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaignViews(rows))
	}
}

// CampaignCreate opens a new bonus goal.
func CampaignCreate(svc internalcampaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaigns service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body createCampaignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaignType, err := enums.ParseCampaignType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign type"))
			return
		}

		campaign, err := svc.Create(r.Context(), actor, internalcampaigns.CreateCampaignInput{
			Title:       body.Title,
			Description: body.Description,
			Type:        campaignType,
			TargetValue: body.TargetValue,
			Reward:      body.Reward,
			StartDate:   body.StartDate,
			EndDate:     body.EndDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := campaignViews([]internalcampaigns.CampaignProgress{{Campaign: *campaign}})[0]
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CampaignToggle flips a campaign between active and inactive.
func CampaignToggle(svc internalcampaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaigns service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		campaignID, err := validators.ParseUUIDParam(chi.URLParam(r, "campaignId"), "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Toggle(r.Context(), actor, campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := campaignViews([]internalcampaigns.CampaignProgress{{Campaign: result.Campaign}})[0]
		responses.WriteSuccess(w, toggleCampaignResponse{Campaign: view, IsActive: result.IsActive})
	}
}

// CampaignDelete removes a campaign.
func CampaignDelete(svc internalcampaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaigns service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		campaignID, err := validators.ParseUUIDParam(chi.URLParam(r, "campaignId"), "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, campaignID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
