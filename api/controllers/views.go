package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/internal/analytics"
	"github.com/boosthq/boosthq-backend/internal/campaigns"
	"github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// OrderView is the wire shape of a local order. Client credentials are
// included because workers need them to log into the boosted account.
type OrderView struct {
	ID               string            `json:"id"`
	Platform         string            `json:"platform"`
	EldoradoRef      *string           `json:"eldorado_ref,omitempty"`
	ClientUsername   string            `json:"client_username"`
	ClientPassword   string            `json:"client_password"`
	ClientEmail      string            `json:"client_email"`
	OrderType        enums.OrderType   `json:"order_type"`
	OrderLink        string            `json:"order_link"`
	AcceptedPrice    decimal.Decimal   `json:"accepted_price"`
	AssignedWorkerID *uuid.UUID        `json:"assigned_worker_id,omitempty"`
	AldoradoAccount  string            `json:"aldorado_account"`
	Status           enums.OrderStatus `json:"status"`
	Notes            string            `json:"notes"`
	ScreenshotRef    *string           `json:"screenshot_ref,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}

// OrderListView wraps one page of orders plus the next cursor.
type OrderListView struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// HistoryEntryView is one audit trail row.
type HistoryEntryView struct {
	ID         uuid.UUID          `json:"id"`
	OrderID    string             `json:"order_id"`
	StatusFrom *enums.OrderStatus `json:"status_from,omitempty"`
	StatusTo   enums.OrderStatus  `json:"status_to"`
	ChangedBy  uuid.UUID          `json:"changed_by"`
	CreatedAt  time.Time          `json:"created_at"`
}

// FruitLinkView is one consumed-stock row attached to an order.
type FruitLinkView struct {
	ID       uuid.UUID `json:"id"`
	FruitID  uuid.UUID `json:"fruit_id"`
	Quantity int       `json:"quantity"`
}

// OrderDetailView is an order with its trail and consumed stock.
type OrderDetailView struct {
	Order      OrderView          `json:"order"`
	History    []HistoryEntryView `json:"history"`
	FruitLinks []FruitLinkView    `json:"fruit_links"`
}

// FruitView is the wire shape of a stock SKU.
type FruitView struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	ImageRef string            `json:"image_ref,omitempty"`
	Quantity int               `json:"quantity"`
	Rarity   enums.FruitRarity `json:"rarity"`
	Price    decimal.Decimal   `json:"price"`
}

// StockEventView is one ledger row.
type StockEventView struct {
	ID           uuid.UUID `json:"id"`
	FruitID      uuid.UUID `json:"fruit_id"`
	ChangeAmount int       `json:"change_amount"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// EldoradoOrderView is the wire shape of a staged marketplace order.
type EldoradoOrderView struct {
	EldoradoID         string              `json:"eldorado_id"`
	BuyerUsername      string              `json:"buyer_username"`
	AcceptedPrice      decimal.Decimal     `json:"accepted_price"`
	OrderLink          string              `json:"order_link"`
	State              enums.EldoradoState `json:"state"`
	ConvertedToLocalID *string             `json:"converted_to_local_id,omitempty"`
	ImportedAt         time.Time           `json:"imported_at"`
}

// CampaignView is a campaign with the viewer's progress.
type CampaignView struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Type        enums.CampaignType `json:"type"`
	TargetValue decimal.Decimal    `json:"target_value"`
	Reward      string             `json:"reward,omitempty"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	IsActive    bool               `json:"is_active"`
	Progress    decimal.Decimal    `json:"progress"`
	Completed   bool               `json:"completed"`
}

// DayStatsView is one day of the reporting endpoints.
type DayStatsView struct {
	Date      string                  `json:"date"`
	Revenue   decimal.Decimal         `json:"revenue"`
	Completed int                     `json:"completed"`
	NewOrders int                     `json:"new_orders"`
	ByType    map[enums.OrderType]int `json:"by_type"`
}

// WorkerStatsView is one worker's performance row.
type WorkerStatsView struct {
	UserID           uuid.UUID       `json:"user_id"`
	Username         string          `json:"username"`
	TotalOrders      int64           `json:"total_orders"`
	CompletedOrders  int64           `json:"completed_orders"`
	RevenueGenerated decimal.Decimal `json:"revenue_generated"`
	HoursWorked      float64         `json:"hours_worked"`
	OrdersPerHour    float64         `json:"orders_per_hour"`
}

// WorkSessionView is one tracked work session.
type WorkSessionView struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	LoginTime       time.Time  `json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// UserView is a user without credential fields.
type UserView struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Role     enums.Role `json:"role"`
}

func orderView(o models.LocalOrder) OrderView {
	return OrderView{
		ID:               o.ID,
		Platform:         o.Platform,
		EldoradoRef:      o.EldoradoRef,
		ClientUsername:   o.ClientUsername,
		ClientPassword:   o.ClientPassword,
		ClientEmail:      o.ClientEmail,
		OrderType:        o.OrderType,
		OrderLink:        o.OrderLink,
		AcceptedPrice:    o.AcceptedPrice,
		AssignedWorkerID: o.AssignedWorkerID,
		AldoradoAccount:  o.AldoradoAccount,
		Status:           o.Status,
		Notes:            o.Notes,
		ScreenshotRef:    o.ScreenshotRef,
		CreatedAt:        o.CreatedAt,
		CompletedAt:      o.CompletedAt,
	}
}

func orderListView(list *orders.OrderList) OrderListView {
	view := OrderListView{
		Orders:     make([]OrderView, 0, len(list.Orders)),
		NextCursor: list.NextCursor,
	}
	for _, o := range list.Orders {
		view.Orders = append(view.Orders, orderView(o))
	}
	return view
}

func historyViews(entries []models.OrderHistoryEntry) []HistoryEntryView {
	views := make([]HistoryEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, HistoryEntryView{
			ID:         e.ID,
			OrderID:    e.OrderID,
			StatusFrom: e.StatusFrom,
			StatusTo:   e.StatusTo,
			ChangedBy:  e.ChangedBy,
			CreatedAt:  e.CreatedAt,
		})
	}
	return views
}

func orderDetailView(detail *orders.OrderDetail) OrderDetailView {
	links := make([]FruitLinkView, 0, len(detail.FruitLinks))
	for _, l := range detail.FruitLinks {
		links = append(links, FruitLinkView{ID: l.ID, FruitID: l.FruitID, Quantity: l.Quantity})
	}
	return OrderDetailView{
		Order:      orderView(detail.Order),
		History:    historyViews(detail.History),
		FruitLinks: links,
	}
}

func fruitView(sku models.FruitSku) FruitView {
	return FruitView{
		ID:       sku.ID,
		Name:     sku.Name,
		ImageRef: sku.ImageRef,
		Quantity: sku.Quantity,
		Rarity:   sku.Rarity,
		Price:    sku.Price,
	}
}

func stockEventViews(events []models.FruitStockEvent) []StockEventView {
	views := make([]StockEventView, 0, len(events))
	for _, e := range events {
		views = append(views, StockEventView{
			ID:           e.ID,
			FruitID:      e.FruitID,
			ChangeAmount: e.ChangeAmount,
			Reason:       e.Reason,
			CreatedAt:    e.CreatedAt,
		})
	}
	return views
}

func eldoradoViews(rows []models.EldoradoOrder) []EldoradoOrderView {
	views := make([]EldoradoOrderView, 0, len(rows))
	for _, o := range rows {
		views = append(views, EldoradoOrderView{
			EldoradoID:         o.EldoradoID,
			BuyerUsername:      o.BuyerUsername,
			AcceptedPrice:      o.AcceptedPrice,
			OrderLink:          o.OrderLink,
			State:              o.State,
			ConvertedToLocalID: o.ConvertedToLocalID,
			ImportedAt:         o.ImportedAt,
		})
	}
	return views
}

func campaignViews(rows []campaigns.CampaignProgress) []CampaignView {
	views := make([]CampaignView, 0, len(rows))
	for _, row := range rows {
		views = append(views, CampaignView{
			ID:          row.Campaign.ID,
			Title:       row.Campaign.Title,
			Description: row.Campaign.Description,
			Type:        row.Campaign.Type,
			TargetValue: row.Campaign.TargetValue,
			Reward:      row.Campaign.Reward,
			StartDate:   row.Campaign.StartDate,
			EndDate:     row.Campaign.EndDate,
			IsActive:    row.Campaign.IsActive,
			Progress:    row.Progress,
			Completed:   row.Completed,
		})
	}
	return views
}

func dayStatsView(stats analytics.DayStats) DayStatsView {
	return DayStatsView{
		Date:      stats.Date,
		Revenue:   stats.Revenue,
		Completed: stats.Completed,
		NewOrders: stats.NewOrders,
		ByType:    stats.ByType,
	}
}

func workerStatsViews(rows []analytics.WorkerStats) []WorkerStatsView {
	views := make([]WorkerStatsView, 0, len(rows))
	for _, row := range rows {
		views = append(views, WorkerStatsView{
			UserID:           row.UserID,
			Username:         row.Username,
			TotalOrders:      row.TotalOrders,
			CompletedOrders:  row.CompletedOrders,
			RevenueGenerated: row.RevenueGenerated,
			HoursWorked:      row.HoursWorked,
			OrdersPerHour:    row.OrdersPerHour,
		})
	}
	return views
}

func sessionViews(rows []models.WorkSession) []WorkSessionView {
	views := make([]WorkSessionView, 0, len(rows))
	for _, s := range rows {
		views = append(views, WorkSessionView{
			ID:              s.ID,
			UserID:          s.UserID,
			LoginTime:       s.LoginTime,
			LogoutTime:      s.LogoutTime,
			DurationMinutes: s.DurationMinutes,
		})
	}
	return views
}
