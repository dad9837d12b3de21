// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger core. Callers match them with errors.Is.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrOwnership           = errors.New("resource belongs to another owner")
	ErrDuplicateCategory   = errors.New("category with this title already exists under the same parent")
	ErrCycleDetected       = errors.New("category cannot be moved under itself or its descendant")
	ErrInvalidParent       = errors.New("invalid parent category")
	ErrHasChildren         = errors.New("category has child categories")
	ErrInUse               = errors.New("resource is referenced by transactions")
	ErrConcurrencyConflict = errors.New("concurrent update conflict, try again")
)

// Specific not-found errors; each matches ErrNotFound.
var (
	ErrWalletNotFound      = &kindError{msg: "wallet not found", kind: ErrNotFound}
	ErrCategoryNotFound    = &kindError{msg: "category not found", kind: ErrNotFound}
	ErrCurrencyNotFound    = &kindError{msg: "currency not found", kind: ErrNotFound}
	ErrTransactionNotFound = &kindError{msg: "transaction not found", kind: ErrNotFound}
	ErrLineItemNotFound    = &kindError{msg: "line item not found", kind: ErrNotFound}
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// ValidationError describes a rejected input field. It matches ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// DependentsError reports a delete blocked by dependent rows.
// It matches ErrInUse or ErrHasChildren depending on how it was built.
type DependentsError struct {
	Entity    string
	Dependent string
	Count     int
	kind      error
}

// NewInUseError blocks deleting entity while count transactions reference it.
func NewInUseError(entity string, count int) *DependentsError {
	return &DependentsError{Entity: entity, Dependent: "transactions", Count: count, kind: ErrInUse}
}

// NewHasChildrenError blocks deleting a category that still has count children.
func NewHasChildrenError(count int) *DependentsError {
	return &DependentsError{Entity: "category", Dependent: "child categories", Count: count, kind: ErrHasChildren}
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("cannot delete %s: it has %d %s", e.Entity, e.Count, e.Dependent)
}

func (e *DependentsError) Unwrap() error { return e.kind }

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
