package domain

import "errors"

// ValidationError rejects bad user input at the boundary. It is surfaced to
// the user immediately and never reaches the store.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

var (
	ErrBlankIdentity   = ValidationError{Reason: "identity is required"}
	ErrNoSelection     = ValidationError{Reason: "select both a category and an item"}
	ErrUnknownCategory = ValidationError{Reason: "invalid category selected"}
	ErrEmptyCart       = ValidationError{Reason: "cart is empty"}
	ErrCooldownActive  = ValidationError{Reason: "only one order every 3 hours"}
)

// ErrNotConfirmed guards the destructive delete path: without an explicit
// confirmation the store is left untouched.
var ErrNotConfirmed = errors.New("deletion not confirmed")

// StoreWriteError wraps a failed store mutation. Submissions surface it to
// the user with the cart preserved for retry; status changes and deletes only
// log it.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreWriteError) Unwrap() error { return e.Err }
