package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// CreateOrderInput carries everything needed to open a new local order.
type CreateOrderInput struct {
	Platform         string
	EldoradoRef      *string
	ClientUsername   string
	ClientPassword   string
	ClientEmail      string
	OrderType        enums.OrderType
	OrderLink        string
	AcceptedPrice    decimal.Decimal
	AssignedWorkerID *uuid.UUID
	AldoradoAccount  string
	Notes            string
	FruitLines       []FruitLine
}

// FruitLine requests that creating the order consume stock of one SKU.
type FruitLine struct {
	FruitID  uuid.UUID
	Quantity int
}

// UpdateOrderInput captures the mutable fields of an open order. Nil
// pointers leave the field untouched.
type UpdateOrderInput struct {
	Platform        *string
	ClientUsername  *string
	ClientPassword  *string
	ClientEmail     *string
	OrderLink       *string
	AcceptedPrice   *decimal.Decimal
	AldoradoAccount *string
	Notes           *string
	Status          *enums.OrderStatus
}

// CompleteOrderInput carries the optional proof attached at completion.
type CompleteOrderInput struct {
	ScreenshotRef *string
	Notes         *string
}

// OrderFilters narrows list queries.
type OrderFilters struct {
	Status           *enums.OrderStatus
	OrderType        *enums.OrderType
	AssignedWorkerID *uuid.UUID
	Unassigned       bool
	Account          string
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.LocalOrder
	NextCursor string
}

// OrderDetail bundles an order with its audit trail and consumed stock.
type OrderDetail struct {
	Order      models.LocalOrder
	History    []models.OrderHistoryEntry
	FruitLinks []models.FruitOrderLink
}
