package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internaleldorado "github.com/boosthq/boosthq-backend/internal/eldorado"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

type eldoradoImportRow struct {
	EldoradoID    string          `json:"eldorado_id" validate:"required,max=64"`
	BuyerUsername string          `json:"buyer_username" validate:"required,max=128"`
	AcceptedPrice decimal.Decimal `json:"accepted_price" validate:"required"`
	OrderLink     string          `json:"order_link" validate:"omitempty,url"`
	State         string          `json:"state" validate:"required"`
}

type eldoradoImportRequest struct {
	Orders []eldoradoImportRow `json:"orders" validate:"required,min=1,dive"`
}

type eldoradoImportResponse struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

type eldoradoConvertRequest struct {
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id,omitempty"`
}

type eldoradoConvertResponse struct {
	LocalOrderID string `json:"local_order_id"`
}

// EldoradoImport stages a batch of marketplace orders. Rows already
// converted to local orders are left untouched.
func EldoradoImport(svc internaleldorado.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "eldorado service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body eldoradoImportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]internaleldorado.ImportRow, 0, len(body.Orders))
		for _, row := range body.Orders {
			state, err := enums.ParseEldoradoState(row.State)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state").WithDetails(map[string]any{"eldorado_id": row.EldoradoID}))
				return
			}
			rows = append(rows, internaleldorado.ImportRow{
				EldoradoID:    row.EldoradoID,
				BuyerUsername: row.BuyerUsername,
				AcceptedPrice: row.AcceptedPrice,
				OrderLink:     row.OrderLink,
				State:         state,
			})
		}

		result, err := svc.Import(r.Context(), actor, internaleldorado.ImportInput{Orders: rows})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eldoradoImportResponse{
			Imported: result.Imported,
			Updated:  result.Updated,
			Skipped:  result.Skipped,
		})
	}
}

// EldoradoPending lists staged orders not yet converted to local orders.
func EldoradoPending(svc internaleldorado.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "eldorado service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.ListPending(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eldoradoViews(rows))
	}
}

// EldoradoConvert turns one staged order into a local order. A staged
// order converts at most once, no matter how many calls race.
func EldoradoConvert(svc internaleldorado.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "eldorado service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		eldoradoID := strings.TrimSpace(chi.URLParam(r, "eldoradoId"))
		if eldoradoID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "eldorado id is required"))
			return
		}

		var body eldoradoConvertRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Convert(r.Context(), actor, eldoradoID, internaleldorado.ConvertInput{
			AssignedWorkerID: body.AssignedWorkerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, eldoradoConvertResponse{LocalOrderID: result.LocalOrderID})
	}
}
