package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity id does not resolve to a row.
var ErrNotFound = errors.New("not found")

// InsufficientStockError reports a quantity conflict on a specific batch.
type InsufficientStockError struct {
	BatchID   uint
	BatchName string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.BatchName, e.Available, e.Requested)
}

// BatchNotFoundError reports the offending batch id of a failed order line.
type BatchNotFoundError struct {
	BatchID uint
}

func (e *BatchNotFoundError) Error() string {
	return fmt.Sprintf("flower batch %d not found", e.BatchID)
}

func (e *BatchNotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports malformed input before it reaches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
