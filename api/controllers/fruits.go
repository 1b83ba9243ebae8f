package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalfruits "github.com/boosthq/boosthq-backend/internal/fruits"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
)

type upsertFruitRequest struct {
	ID       *uuid.UUID      `json:"id,omitempty"`
	Name     string          `json:"name" validate:"required,max=128"`
	ImageRef string          `json:"image_ref" validate:"omitempty,max=512"`
	Rarity   string          `json:"rarity" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

type adjustStockRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=set increment decrement"`
	Amount int    `json:"amount" validate:"omitempty,min=0"`
	Reason string `json:"reason" validate:"omitempty,max=256"`
}

type adjustStockResponse struct {
	Fruit       FruitView `json:"fruit"`
	ChangeDelta int       `json:"change_delta"`
}

type reserveStockRequest struct {
	OrderID  string    `json:"order_id" validate:"required,max=32"`
	FruitID  uuid.UUID `json:"fruit_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// FruitList returns the full stock catalog.
func FruitList(svc internalfruits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		skus, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]FruitView, 0, len(skus))
		for _, sku := range skus {
			views = append(views, fruitView(sku))
		}
		responses.WriteSuccess(w, views)
	}
}

// FruitUpsert creates a SKU or updates its metadata. Stock quantities
// only move through the stock endpoint so every change hits the ledger.
func FruitUpsert(svc internalfruits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body upsertFruitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rarity, err := enums.ParseFruitRarity(body.Rarity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rarity"))
			return
		}

		sku, err := svc.Upsert(r.Context(), actor, internalfruits.UpsertSkuInput{
			ID:       body.ID,
			Name:     body.Name,
			ImageRef: body.ImageRef,
			Rarity:   rarity,
			Price:    body.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if body.ID == nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, fruitView(*sku))
	}
}

// FruitStockAdjust applies one manual stock correction and records it in
// the ledger.
func FruitStockAdjust(svc internalfruits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		fruitID, err := validators.ParseUUIDParam(chi.URLParam(r, "fruitId"), "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseStockChangeMode(body.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
			return
		}

		result, err := svc.AdjustStock(r.Context(), actor, fruitID, internalfruits.AdjustStockInput{
			Mode:   mode,
			Amount: body.Amount,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adjustStockResponse{
			Fruit:       fruitView(result.Sku),
			ChangeDelta: result.ChangeDelta,
		})
	}
}

// FruitReserve consumes stock for an order line added after the order
// was created. The decrement and its ledger event commit together.
func FruitReserve(svc internalfruits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body reserveStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sku, err := svc.ReserveForOrder(r.Context(), actor, body.OrderID, body.FruitID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fruitView(*sku))
	}
}

// FruitEvents returns the ledger history of one SKU, newest first.
func FruitEvents(svc internalfruits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		fruitID, err := validators.ParseUUIDParam(chi.URLParam(r, "fruitId"), "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.Events(r.Context(), actor, fruitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stockEventViews(events))
	}
}
