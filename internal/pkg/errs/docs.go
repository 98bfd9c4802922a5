// Package errs provides the error taxonomy shared by every layer of kitchenpos.
//
// Each error family follows the same shape: a sentinel (ErrValueIsInvalid, ...),
// a struct carrying details, constructors with and without a cause, and an Unwrap
// method so callers classify errors with errors.Is instead of string matching.
//
// The HTTP adapter maps the families to status codes:
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange: 400
//   - ErrObjectNotFound: 404
//   - ErrStorage: 500
package errs
