package enums

import "fmt"

// EldoradoState mirrors the marketplace-side delivery state of a staged order.
type EldoradoState string

const (
	EldoradoStatePendingDelivery EldoradoState = "Pending Delivery"
	EldoradoStateDelivered       EldoradoState = "Delivered"
)

var validEldoradoStates = []EldoradoState{
	EldoradoStatePendingDelivery,
	EldoradoStateDelivered,
}

// String implements fmt.Stringer.
func (s EldoradoState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EldoradoState.
func (s EldoradoState) IsValid() bool {
	for _, candidate := range validEldoradoStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEldoradoState converts raw input into an EldoradoState.
func ParseEldoradoState(value string) (EldoradoState, error) {
	for _, candidate := range validEldoradoStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid eldorado state %q", value)
}
