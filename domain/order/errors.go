/*
Package order - domain-level sentinel errors for the Order aggregate.

Design, carried from the teacher's domain error package:
  - sentinel errors support errors.Is() type-safe matching
  - constructors capture a stack at creation time, formatted lazily
  - no HTTP status codes or other transport concepts leak in here
*/
package order

import (
	"errors"

	"github.com/gmartincasals/clean-orders/domain/shared"
)

// ErrOrderNotFound is the sentinel for a missing order; pkg/errors maps it
// to a NotFound error. The repositories in this module report a missing
// order as (nil, nil) rather than returning it.
var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicateOrderID is the sentinel for an order id that already exists;
// pkg/errors maps it to a Conflict error. The CreateOrder use case reports a
// duplicate with its own Conflict error rather than returning it.
var ErrDuplicateOrderID = errors.New("order id already exists")

// NewOrderNotFoundError builds an error matching errors.Is(err,
// ErrOrderNotFound) while carrying the offending id and a capture-time
// stack for logging.
func NewOrderNotFoundError(orderID string) error {
	return &orderDomainError{
		sentinel: ErrOrderNotFound,
		message:  "order not found: " + orderID,
		stack:    shared.CaptureStack(3),
	}
}

// NewDuplicateOrderIDError builds an error matching errors.Is(err,
// ErrDuplicateOrderID).
func NewDuplicateOrderIDError(orderID string) error {
	return &orderDomainError{
		sentinel: ErrDuplicateOrderID,
		message:  "order id already exists: " + orderID,
		stack:    shared.CaptureStack(3),
	}
}

type orderDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *orderDomainError) Error() string { return e.message }
func (e *orderDomainError) Unwrap() error { return e.sentinel }

// Stack implements shared.Stacker.
func (e *orderDomainError) Stack() []string {
	if len(e.stack) == 0 {
		return nil
	}
	return shared.FormatStack(e.stack)
}
