package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation constants
const (
	MaxDescriptionLength = 1000
	MaxEntriesPerOp      = 500
	MaxEntryAmount       = int64(1) << 53
	DefaultPageSize      = 50
	MaxPageSize          = 1000
)

// EntryInput is the caller-supplied shape of an entry before it is persisted.
type EntryInput struct {
	ID        string
	WalletID  string
	Direction Direction
	Amount    int64
}

// ValidateEntryInput validates a single entry.
func ValidateEntryInput(walletID string, direction Direction, amount int64) error {
	if strings.TrimSpace(walletID) == "" {
		return ErrMissingWallet
	}

	if !direction.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, direction)
	}

	if amount < 1 {
		return ErrInvalidAmount
	}

	if amount > MaxEntryAmount {
		return fmt.Errorf("%w: maximum is %d", ErrInvalidAmount, MaxEntryAmount)
	}

	return nil
}

// ValidateEntries validates a non-empty entry list. Ids, when present, must be unique.
func ValidateEntries(entries []EntryInput) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}

	if len(entries) > MaxEntriesPerOp {
		return fmt.Errorf("%w: at most %d entries per operation", ErrValidation, MaxEntriesPerOp)
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if err := ValidateEntryInput(e.WalletID, e.Direction, e.Amount); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		if e.ID == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateEntryID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	return nil
}

// ValidateDescription validates an optional description.
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}

	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("%w: limit is %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateTargetAmount validates an adjustment target.
func ValidateTargetAmount(target int64) error {
	if target < 0 {
		return ErrNegativeTarget
	}
	return nil
}

// ValidateDateRange checks that from is not after to when both are set.
func ValidateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
