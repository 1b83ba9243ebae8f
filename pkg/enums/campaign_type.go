package enums

import "fmt"

// CampaignType selects the aggregation a bonus campaign measures.
type CampaignType string

const (
	CampaignTypeOrderCount CampaignType = "order_count"
	CampaignTypeRevenueSum CampaignType = "revenue_sum"
)

var validCampaignTypes = []CampaignType{
	CampaignTypeOrderCount,
	CampaignTypeRevenueSum,
}

// String implements fmt.Stringer.
func (t CampaignType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CampaignType.
func (t CampaignType) IsValid() bool {
	for _, candidate := range validCampaignTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCampaignType converts raw input into a CampaignType.
func ParseCampaignType(value string) (CampaignType, error) {
	for _, candidate := range validCampaignTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign type %q", value)
}
