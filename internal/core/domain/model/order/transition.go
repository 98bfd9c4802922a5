package order

import (
	"errors"
	"fmt"
)

// ErrTransitionNotAllowed is returned when the status policy rejects a move.
var ErrTransitionNotAllowed = errors.New("status transition is not allowed")

// TransitionError names the rejected move.
type TransitionError struct {
	From Status
	To   Status
}

func NewTransitionError(from, to Status) *TransitionError {
	return &TransitionError{From: from, To: to}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrTransitionNotAllowed, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrTransitionNotAllowed
}
