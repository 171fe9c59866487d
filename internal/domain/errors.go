package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("concurrent modification conflict")
)

var (
	// Lookup errors
	ErrWalletNotFound        = fmt.Errorf("wallet %w", ErrNotFound)
	ErrOperationNotFound     = fmt.Errorf("operation %w", ErrNotFound)
	ErrEntryNotFound         = fmt.Errorf("operation entry %w", ErrNotFound)
	ErrOperationTypeNotFound = fmt.Errorf("operation type %w", ErrNotFound)
	ErrCurrencyNotFound      = fmt.Errorf("currency %w", ErrNotFound)

	// Input errors
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a positive integer", ErrValidation)
	ErrInvalidDirection    = fmt.Errorf("%w: direction must be credit or debit", ErrValidation)
	ErrNoEntries           = fmt.Errorf("%w: operation requires at least one entry", ErrValidation)
	ErrMissingWallet       = fmt.Errorf("%w: entry wallet id is required", ErrValidation)
	ErrMissingType         = fmt.Errorf("%w: operation type id is required", ErrValidation)
	ErrNegativeTarget      = fmt.Errorf("%w: target amount must not be negative", ErrValidation)
	ErrDescriptionTooLong  = fmt.Errorf("%w: description is too long", ErrValidation)
	ErrInvalidDateRange    = fmt.Errorf("%w: date range start is after its end", ErrValidation)
	ErrInvalidCategory     = fmt.Errorf("%w: unknown wallet category filter", ErrValidation)
	ErrDuplicateEntryID    = fmt.Errorf("%w: entry id appears more than once", ErrValidation)
	ErrMissingCreationTime = fmt.Errorf("%w: creation timestamp is required", ErrValidation)
)

// IsNotFound reports whether err is of the not-found kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is of the validation kind.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict reports whether err is of the conflict kind.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
