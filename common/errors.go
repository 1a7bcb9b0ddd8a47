package common

import (
	"errors"
	"fmt"
)

// Domain error kinds. Services wrap these with %w and contextual detail; the
// API boundary resolves the kind with errors.Is to pick a response code.
var (
	// ErrUnauthenticated is returned when no principal accompanies a request
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the principal may not perform the operation
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed amounts, dates and parameters
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition is returned when an order state machine guard fails
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInsufficientFunds is returned when a reservation precondition fails
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPaymentMethodMismatch is returned when no vendor payment method
	// matches the one supplied on order creation
	ErrPaymentMethodMismatch = errors.New("payment method mismatch")
	// ErrRateUnavailable is returned when no direct or inverse rate resolves
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrDuplicateKey is returned on a uniqueness constraint violation
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConflict is returned when serializable retries are exhausted
	ErrConflict = errors.New("transaction conflict")
	// ErrTimeout is returned when the request deadline expires mid-scope
	ErrTimeout = errors.New("deadline exceeded")
	// ErrInternal covers invariant breaches and unexpected failures
	ErrInternal = errors.New("internal error")

	// ErrNilPointer defines an error for a nil pointer
	ErrNilPointer = errors.New("nil pointer")
)

// InsufficientFundsError reports the shortfall so the boundary can surface
// required versus available amounts.
type InsufficientFundsError struct {
	Required  string
	Available string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s available %s",
		e.Required, e.Available)
}

// Unwrap implements errors.Is support
func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// TransitionError reports the current order status alongside the attempted
// transition.
type TransitionError struct {
	Current   string
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %q", e.Attempted, e.Current)
}

// Unwrap implements errors.Is support
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
