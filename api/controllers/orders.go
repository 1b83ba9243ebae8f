package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalorders "github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
	"github.com/boosthq/boosthq-backend/pkg/pagination"
)

type fruitLineRequest struct {
	FruitID  uuid.UUID `json:"fruit_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Platform         string             `json:"platform" validate:"required,max=64"`
	EldoradoRef      *string            `json:"eldorado_ref,omitempty"`
	ClientUsername   string             `json:"client_username" validate:"required,max=128"`
	ClientPassword   string             `json:"client_password" validate:"required,max=128"`
	ClientEmail      string             `json:"client_email" validate:"omitempty,email"`
	OrderType        string             `json:"order_type" validate:"required"`
	OrderLink        string             `json:"order_link" validate:"omitempty,url"`
	AcceptedPrice    decimal.Decimal    `json:"accepted_price" validate:"required"`
	AssignedWorkerID *uuid.UUID         `json:"assigned_worker_id,omitempty"`
	AldoradoAccount  string             `json:"aldorado_account" validate:"omitempty,max=128"`
	Notes            string             `json:"notes" validate:"omitempty,max=2000"`
	FruitLines       []fruitLineRequest `json:"fruit_lines,omitempty" validate:"omitempty,dive"`
}

type updateOrderRequest struct {
	Platform        *string          `json:"platform,omitempty" validate:"omitempty,max=64"`
	ClientUsername  *string          `json:"client_username,omitempty" validate:"omitempty,max=128"`
	ClientPassword  *string          `json:"client_password,omitempty" validate:"omitempty,max=128"`
	ClientEmail     *string          `json:"client_email,omitempty" validate:"omitempty,email"`
	OrderLink       *string          `json:"order_link,omitempty" validate:"omitempty,url"`
	AcceptedPrice   *decimal.Decimal `json:"accepted_price,omitempty"`
	AldoradoAccount *string          `json:"aldorado_account,omitempty" validate:"omitempty,max=128"`
	Notes           *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status          *string          `json:"status,omitempty"`
}

type completeOrderRequest struct {
	ScreenshotRef string  `json:"screenshot_ref" validate:"required,max=512"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// OrderCreate opens a new local order, consuming fruit stock when lines
// are attached.
func OrderCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderType, err := enums.ParseOrderType(body.OrderType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type"))
			return
		}

		lines := make([]internalorders.FruitLine, 0, len(body.FruitLines))
		for _, line := range body.FruitLines {
			lines = append(lines, internalorders.FruitLine{FruitID: line.FruitID, Quantity: line.Quantity})
		}

		order, err := svc.Create(r.Context(), actor, internalorders.CreateOrderInput{
			Platform:         body.Platform,
			EldoradoRef:      body.EldoradoRef,
			ClientUsername:   body.ClientUsername,
			ClientPassword:   body.ClientPassword,
			ClientEmail:      body.ClientEmail,
			OrderType:        orderType,
			OrderLink:        body.OrderLink,
			AcceptedPrice:    body.AcceptedPrice,
			AssignedWorkerID: body.AssignedWorkerID,
			AldoradoAccount:  body.AldoradoAccount,
			Notes:            body.Notes,
			FruitLines:       lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderView(*order))
	}
}

// OrderList returns a cursor-paginated page of orders, filtered by the
// query parameters.
func OrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderListView(list))
	}
}

// OrderDetail returns one order with its audit trail and consumed stock.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderDetailView(detail))
	}
}

// OrderHistory returns the status audit trail of one order.
func OrderHistory(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.History(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, historyViews(entries))
	}
}

// OrderClaim assigns an unassigned order to the caller. Exactly one of
// any number of concurrent claims wins.
func OrderClaim(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Claim(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderView(*order))
	}
}

// OrderUpdate edits the mutable fields of an open order.
func OrderUpdate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.UpdateOrderInput{
			Platform:        body.Platform,
			ClientUsername:  body.ClientUsername,
			ClientPassword:  body.ClientPassword,
			ClientEmail:     body.ClientEmail,
			OrderLink:       body.OrderLink,
			AcceptedPrice:   body.AcceptedPrice,
			AldoradoAccount: body.AldoradoAccount,
			Notes:           body.Notes,
		}
		if body.Status != nil {
			status, parseErr := enums.ParseOrderStatus(*body.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		order, err := svc.Update(r.Context(), actor, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderView(*order))
	}
}

// OrderComplete marks an order Completed. Repeated calls return a state
// conflict so completion bonuses are never counted twice.
func OrderComplete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body completeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Complete(r.Context(), actor, orderID, internalorders.CompleteOrderInput{
			ScreenshotRef: &body.ScreenshotRef,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderView(*order))
	}
}

// OrderAccounts lists the distinct seller accounts seen on orders.
func OrderAccounts(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		accounts, err := svc.DistinctAccounts(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"accounts": accounts})
	}
}

func orderIDParam(r *http.Request) (string, error) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return orderID, nil
}

func parseOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	var filters internalorders.OrderFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("order_type")); raw != "" {
		orderType, err := enums.ParseOrderType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_type filter")
		}
		filters.OrderType = &orderType
	}
	if raw := strings.TrimSpace(query.Get("assigned_worker_id")); raw != "" {
		if raw == "none" {
			filters.Unassigned = true
		} else {
			workerID, err := validators.ParseUUIDParam(raw, "assigned_worker_id")
			if err != nil {
				return filters, err
			}
			filters.AssignedWorkerID = &workerID
		}
	}
	filters.Account = strings.TrimSpace(query.Get("account"))

	return filters, nil
}
