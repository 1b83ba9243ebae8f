package enums

import "fmt"

// FruitRarity ranks a fruit SKU from Common to Mythical.
type FruitRarity string

const (
	FruitRarityCommon    FruitRarity = "Common"
	FruitRarityUncommon  FruitRarity = "Uncommon"
	FruitRarityRare      FruitRarity = "Rare"
	FruitRarityLegendary FruitRarity = "Legendary"
	FruitRarityMythical  FruitRarity = "Mythical"
)

var validFruitRarities = []FruitRarity{
	FruitRarityCommon,
	FruitRarityUncommon,
	FruitRarityRare,
	FruitRarityLegendary,
	FruitRarityMythical,
}

// String implements fmt.Stringer.
func (r FruitRarity) String() string {
	return string(r)
}

// IsValid reports whether the value is a known FruitRarity.
func (r FruitRarity) IsValid() bool {
	for _, candidate := range validFruitRarities {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseFruitRarity converts raw input into a FruitRarity.
func ParseFruitRarity(value string) (FruitRarity, error) {
	for _, candidate := range validFruitRarities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fruit rarity %q", value)
}
