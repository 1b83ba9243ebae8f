package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// DayStats aggregates orders created on one calendar day.
type DayStats struct {
	Date      string
	Revenue   decimal.Decimal
	Completed int
	NewOrders int
	ByType    map[enums.OrderType]int
}

// WorkerOrderRow is the per-worker slice of order totals straight from the
// grouped query.
type WorkerOrderRow struct {
	UserID           uuid.UUID
	Username         string
	TotalOrders      int64
	CompletedOrders  int64
	RevenueGenerated decimal.Decimal
}

// WorkerStats extends the order totals with tracked working time.
type WorkerStats struct {
	WorkerOrderRow
	HoursWorked   float64
	OrdersPerHour float64
}
