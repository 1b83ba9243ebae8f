package enums

import "fmt"

// StockChangeMode selects how a stock adjustment interprets its value.
type StockChangeMode string

const (
	StockChangeModeSet       StockChangeMode = "set"
	StockChangeModeIncrement StockChangeMode = "increment"
	StockChangeModeDecrement StockChangeMode = "decrement"
)

var validStockChangeModes = []StockChangeMode{
	StockChangeModeSet,
	StockChangeModeIncrement,
	StockChangeModeDecrement,
}

// String implements fmt.Stringer.
func (m StockChangeMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known StockChangeMode.
func (m StockChangeMode) IsValid() bool {
	for _, candidate := range validStockChangeModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseStockChangeMode converts raw input into a StockChangeMode.
func ParseStockChangeMode(value string) (StockChangeMode, error) {
	for _, candidate := range validStockChangeModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change mode %q", value)
}
