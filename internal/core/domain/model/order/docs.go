// Package order provides the Order aggregate of the kitchen workflow.
//
// The package includes:
//   - Order: an order ticket with its items, total, notes and lifecycle status
//   - Status: the five lifecycle states pending, received, cooking, ready, completed
//   - Number: the human readable ORD<YYYYMMDD><NNNN> identifier
//   - Event: the state change notifications broadcast after a commit
//
// Key business rules:
//   - Orders start in Pending and only move through the five enumerated statuses
//   - The order number is assigned by the store and never reused
//   - Items are opaque JSON values kept in the order they were submitted
//   - The total amount is caller supplied and never negative
//
// Which transitions are legal is decided by services.StatusPolicy, not by Order.
package order
