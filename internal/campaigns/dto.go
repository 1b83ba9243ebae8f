package campaigns

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

// CreateCampaignInput describes a new bonus goal.
type CreateCampaignInput struct {
	Title       string
	Description string
	Type        enums.CampaignType
	TargetValue decimal.Decimal
	Reward      string
	StartDate   time.Time
	EndDate     time.Time
}

// CampaignProgress is a campaign paired with the viewer's progress toward
// its target. Progress stays zero for admins, who only manage campaigns.
type CampaignProgress struct {
	Campaign  models.Campaign
	Progress  decimal.Decimal
	Completed bool
}

// ToggleResult reports the state a toggle left the campaign in.
type ToggleResult struct {
	Campaign models.Campaign
	IsActive bool
}
