package tally

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("tally: not found")
	ErrAlreadyExists = errors.New("tally: already exists")
	ErrInvalidInput  = errors.New("tally: invalid input")

	// Item errors
	ErrItemNotFound   = errors.New("tally: item not found")
	ErrItemInUse      = errors.New("tally: item has recorded transactions")
	ErrDuplicateItem  = errors.New("tally: duplicate item id")
	ErrInvalidUnit    = errors.New("tally: invalid unit")
	ErrInvalidLevels  = errors.New("tally: invalid stock levels")
	ErrUnknownItemKey = errors.New("tally: unknown standardized item key")

	// Transaction errors
	ErrTransactionNotFound = errors.New("tally: transaction not found")
	ErrInvalidType         = errors.New("tally: invalid transaction type")
	ErrInvalidQuantity     = errors.New("tally: invalid transaction quantity")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("tally: snapshot not found")
	ErrSnapshotEmpty    = errors.New("tally: snapshot has no levels")

	// Category and supplier errors
	ErrCategoryNotFound = errors.New("tally: category not found")
	ErrSupplierNotFound = errors.New("tally: supplier not found")

	// Catalog errors
	ErrCatalogInvalid    = errors.New("tally: catalog invalid")
	ErrComponentNotFound = errors.New("tally: component not found")
	ErrMenuItemUnmapped  = errors.New("tally: menu item not mapped")

	// POS extract errors
	ErrExtractInvalid  = errors.New("tally: extract invalid")
	ErrMissingColumn   = errors.New("tally: extract missing required column")
	ErrExtractEmpty    = errors.New("tally: extract has no rows")
	ErrCatalogRequired = errors.New("tally: no catalog configured")

	// Store errors
	ErrStoreNotReady     = errors.New("tally: store not ready")
	ErrStoreClosed       = errors.New("tally: store is closed")
	ErrTransactionFailed = errors.New("tally: store transaction failed")
	ErrMigrationFailed   = errors.New("tally: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tally: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tally: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("tally: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrSnapshotNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSupplierNotFound) ||
		errors.Is(err, ErrComponentNotFound)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	var vp *ValidationError
	if errors.As(err, &vp) {
		return true
	}
	var vv ValidationError
	if errors.As(err, &vv) {
		return true
	}
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidUnit)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
