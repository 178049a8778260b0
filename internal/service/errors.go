package service

import "fmt"

// ValidationError rejects caller input before anything is persisted. Field is
// empty for failures that concern the cart as a whole.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PlacementFailedError is returned when a write inside the placement
// transaction failed and the transaction was rolled back.
type PlacementFailedError struct {
	Cause error
}

func (e *PlacementFailedError) Error() string {
	return fmt.Sprintf("order placement failed and was rolled back: %v", e.Cause)
}

func (e *PlacementFailedError) Unwrap() error {
	return e.Cause
}

// PersistenceError is fatal: the transaction could not be started, or could
// not be rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence fault during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
