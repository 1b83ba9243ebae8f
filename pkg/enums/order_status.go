package enums

import "fmt"

// OrderStatus tracks the lifecycle of a local order.
//
// New, Working and Postponed are mutually reachable; Completed is terminal.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "New"
	OrderStatusWorking   OrderStatus = "Working"
	OrderStatusPostponed OrderStatus = "Postponed"
	OrderStatusCompleted OrderStatus = "Completed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusWorking,
	OrderStatusPostponed,
	OrderStatusCompleted,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// CanTransitionTo reports whether s -> target is an allowed transition.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.IsValid() || !target.IsValid() || s == target {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	return true
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
