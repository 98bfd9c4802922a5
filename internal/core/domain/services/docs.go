// Package services holds domain logic that does not belong to a single Order.
//
// The package includes:
//   - StatusPolicy: decides which status changes are legal, with a Permissive
//     and a Strict (transition graph) variant
package services
