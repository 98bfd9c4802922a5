// Package kernel provides the shared value objects of the kitchenpos domain:
//   - UUID: opaque identifiers for events and realtime clients
//   - Money: a non-negative decimal amount
//
// Both are immutable and only valid when built through their constructors.
package kernel
