package order

import (
	"fmt"

	"kitchenpos/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	pending ──> received ──> cooking ──> ready ──> completed
//
// The arrow shows the kitchen's usual flow. Which moves are actually accepted is
// decided by the configured services.StatusPolicy.
type Status int

const (
	// Unknown catches uninitialized Status values and is never persisted.
	Unknown Status = iota
	Pending
	Received
	Cooking
	Ready
	// Completed is the terminal state of the kitchen flow.
	Completed
)

var statusNames = map[Status]string{
	Pending:   "pending",
	Received:  "received",
	Cooking:   "cooking",
	Ready:     "ready",
	Completed: "completed",
}

var statusByName = map[string]Status{
	"pending":   Pending,
	"received":  Received,
	"cooking":   Cooking,
	"ready":     Ready,
	"completed": Completed,
}

// Statuses returns the valid statuses in flow order.
func Statuses() []Status {
	return []Status{Pending, Received, Cooking, Ready, Completed}
}

// IsValidStatus reports whether candidate is one of the five persisted status names.
// Matching is exact: "Cooking" and " cooking" are not valid.
func IsValidStatus(candidate string) bool {
	_, ok := statusByName[candidate]
	return ok
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(candidate string) (Status, error) {
	s, ok := statusByName[candidate]
	if !ok {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%q is not a valid status", candidate),
		)
	}
	return s, nil
}

// Validate fails for Unknown and out of range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name, or "unknown" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether s ends the kitchen flow.
func (s Status) IsTerminal() bool {
	return s == Completed
}
