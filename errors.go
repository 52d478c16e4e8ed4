package carteira

import (
	"fmt"

	"github.com/etnz/carteira/date"
)

// ValidationError reports a malformed or semantically invalid operation.
//
// It is recovered per operation: a batch keeps going after one.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid operation: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientPositionError reports a sell that would drive a position negative.
type InsufficientPositionError struct {
	Ticker    string
	On        date.Date
	Held      Quantity
	Requested Quantity
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("on %s, cannot sell %s %s: position is %s", e.On, e.Requested, e.Ticker, e.Held)
}

// RecomputationError reports an internal invariant violated after a full
// recomputation. Nothing must be committed when it happens.
type RecomputationError struct {
	Err error
}

func (e *RecomputationError) Error() string { return "recomputation failed: " + e.Err.Error() }
func (e *RecomputationError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown operation, investor or DARF.
type NotFoundError struct {
	What string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.What, e.ID) }
