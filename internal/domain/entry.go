package domain

import (
	"time"
)

// Direction is the side of an entry. The amount itself is always positive.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Sign returns +1 for credit and -1 for debit.
func (d Direction) Sign() int64 {
	if d == DirectionDebit {
		return -1
	}
	return 1
}

// Signed applies the direction sign to a positive amount.
func (d Direction) Signed(amount int64) int64 {
	return d.Sign() * amount
}

// OperationEntry is a single movement against one wallet.
type OperationEntry struct {
	ID          string
	OperationID string
	WalletID    string
	Wallet      *Wallet
	Direction   Direction
	Amount      int64
	Before      *int64
	After       *int64
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignedAmount returns the amount with the direction sign applied.
func (e *OperationEntry) SignedAmount() int64 {
	return e.Direction.Signed(e.Amount)
}

// Validate checks the entry invariants.
func (e *OperationEntry) Validate() error {
	return ValidateEntryInput(e.WalletID, e.Direction, e.Amount)
}
