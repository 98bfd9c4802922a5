package services

import (
	"fmt"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"
)

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// StatusPolicy decides which status changes the kitchen may make.
//
// Two variants exist:
//   - Permissive: any valid status may be set at any time, backwards included.
//     Staff use this to correct a mis-tapped status.
//   - Strict: only the edges of a transition graph are accepted.
//
// AllowedFrom is what the store uses: it turns the policy into a predecessor
// filter that is checked inside the same UPDATE statement, so the check and the
// write cannot race.
type StatusPolicy interface {
	Name() string

	// CanTransition reports whether from -> to is accepted.
	CanTransition(from, to order.Status) bool

	// AllowedFrom lists the statuses an order may be in for to to be set.
	// A nil slice means there is no restriction.
	AllowedFrom(to order.Status) []order.Status
}

// NewStatusPolicy resolves a configured policy name.
func NewStatusPolicy(name string) (StatusPolicy, error) {
	switch name {
	case "", PolicyPermissive:
		return NewPermissivePolicy(), nil
	case PolicyStrict:
		return NewStrictPolicy(DefaultKitchenFlow()), nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status policy",
			fmt.Errorf("%q is not one of %s, %s", name, PolicyPermissive, PolicyStrict),
		)
	}
}

// PermissivePolicy accepts every valid status regardless of the current one.
type PermissivePolicy struct{}

func NewPermissivePolicy() PermissivePolicy {
	return PermissivePolicy{}
}

func (PermissivePolicy) Name() string {
	return PolicyPermissive
}

func (PermissivePolicy) CanTransition(_, to order.Status) bool {
	return to.Validate() == nil
}

func (PermissivePolicy) AllowedFrom(order.Status) []order.Status {
	return nil
}

// TransitionGraph maps a status to the statuses reachable from it in one step.
type TransitionGraph map[order.Status][]order.Status

// DefaultKitchenFlow is pending -> received -> cooking -> ready -> completed.
// Completed has no outgoing edge.
func DefaultKitchenFlow() TransitionGraph {
	return TransitionGraph{
		order.Pending:  {order.Received},
		order.Received: {order.Cooking},
		order.Cooking:  {order.Ready},
		order.Ready:    {order.Completed},
	}
}

// StrictPolicy only accepts the edges of its graph.
type StrictPolicy struct {
	graph TransitionGraph
}

func NewStrictPolicy(graph TransitionGraph) StrictPolicy {
	copied := make(TransitionGraph, len(graph))
	for from, targets := range graph {
		copied[from] = append([]order.Status(nil), targets...)
	}
	return StrictPolicy{graph: copied}
}

func (StrictPolicy) Name() string {
	return PolicyStrict
}

func (p StrictPolicy) CanTransition(from, to order.Status) bool {
	for _, target := range p.graph[from] {
		if target == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the predecessors of to in flow order. The result is empty,
// not nil, when to has no predecessor, so the store rejects every update.
func (p StrictPolicy) AllowedFrom(to order.Status) []order.Status {
	allowed := make([]order.Status, 0, 1)
	for _, from := range order.Statuses() {
		if p.CanTransition(from, to) {
			allowed = append(allowed, from)
		}
	}
	return allowed
}
