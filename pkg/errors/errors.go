/*
Package errors defines the application-layer error taxonomy.

Design principles, carried from the teacher's pkg/errors:
 1. Standard library errors only; no third-party error package.
 2. Application error kinds cross layer boundaries; they carry no HTTP
    concept — that mapping lives in api/response.
 3. errors.Is()/errors.As() decide the kind, never string matching.
 4. Stack traces are captured by the domain layer at error-construction
    time (see domain/shared), not re-captured here.

Error flow:

	Domain error (domain/*)
	     ↓ FromDomainError
	AppError (this package) — exactly one of four kinds
	     ↓ api/response mapping
	HTTP response
*/
package errors

import (
	"errors"
	"fmt"

	"github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// Kind is one of the four error kinds a caller can branch on (§4.3, §7).
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindInfra      Kind = "INFRA"
)

// AppError is the discriminated union the application layer returns to its
// callers. Exactly one of Field/Resource+ResourceID/Reason/Cause is
// meaningful, depending on Kind.
type AppError struct {
	Kind    Kind
	Message string

	Field string // set when Kind == KindValidation

	Resource   string // set when Kind == KindNotFound
	ResourceID string

	Reason string // set when Kind == KindConflict

	Cause error // set when Kind == KindInfra; never serialized to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// ValidationError reports malformed input. field may be empty when the
// offending field isn't known.
func ValidationError(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

// NotFoundErrorFor reports that resource/id does not exist.
func NotFoundErrorFor(resource, id string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Resource:   resource,
		ResourceID: id,
		Message:    resource + " not found",
	}
}

// ConflictErrorWith reports that the request collides with existing state.
func ConflictErrorWith(message, reason string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Reason: reason}
}

// InfraErrorFrom wraps a storage/network/sink failure. The cause is kept
// for logs, never surfaced to the client.
func InfraErrorFrom(message string, cause error) *AppError {
	return &AppError{Kind: KindInfra, Message: message, Cause: cause}
}

// Is reports whether err is an *AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// AsAppError returns err as an *AppError, wrapping it as an infra error if
// it isn't one already.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InfraErrorFrom("internal error", err)
}

// FromDomainError is the domain-to-application translation boundary: it
// classifies a domain error into exactly one AppError kind using
// errors.Is()/errors.As(), never string matching.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validation *shared.ValidationFailure
	if errors.As(err, &validation) {
		return ValidationError(validation.Field, validation.Reason)
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return &AppError{Kind: KindNotFound, Resource: "Order", Message: err.Error()}
	case errors.Is(err, order.ErrDuplicateOrderID):
		return &AppError{Kind: KindConflict, Message: err.Error(), Reason: "duplicate_order_id"}
	case errors.Is(err, ports.ErrProductNotPriced):
		return &AppError{Kind: KindNotFound, Resource: "Product", Message: err.Error()}
	default:
		return InfraErrorFrom("internal error", err)
	}
}
