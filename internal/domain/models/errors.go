package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups that came back empty.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoteNotFound     = errors.New("note not found")
)

// Discount evaluation failures.
var (
	ErrDiscountInvalid      = errors.New("discount code invalid or inactive")
	ErrDiscountExpired      = errors.New("discount code has expired")
	ErrDiscountNotYetActive = errors.New("discount code is not yet active")
)

// InsufficientStockError is returned when a debit or availability check
// asks for more units than the product currently has. Available carries the
// on-hand quantity so callers can surface it to the user.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, e.Available, e.Requested)
}

// InvalidTransitionError reports an attempt to move a document out of a
// state that does not permit it.
type InvalidTransitionError struct {
	From NoteStatus
	To   NoteStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition note from %s to %s", e.From, e.To)
}

// ValidationError flags malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
