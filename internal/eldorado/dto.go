package eldorado

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// ImportRow is one marketplace order pulled from the Eldorado export.
type ImportRow struct {
	EldoradoID    string
	BuyerUsername string
	AcceptedPrice decimal.Decimal
	OrderLink     string
	State         enums.EldoradoState
}

// ImportInput wraps a batch of rows to stage.
type ImportInput struct {
	Orders []ImportRow
}

// ImportResult reports what the batch did row by row.
type ImportResult struct {
	Imported int
	Updated  int
	Skipped  int
}

// ConvertInput carries the optional assignment made during conversion.
type ConvertInput struct {
	AssignedWorkerID *uuid.UUID
}

// ConvertResult returns the id of the local order that now owns the work.
type ConvertResult struct {
	LocalOrderID string
}
