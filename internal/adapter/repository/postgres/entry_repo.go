package postgres

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create creates a new entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.OperationEntry) error {
	return queriesFor(r.db, tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:           entry.ID,
		OperationID:  entry.OperationID,
		WalletID:     entry.WalletID,
		Direction:    string(entry.Direction),
		Amount:       entry.Amount,
		BeforeAmount: int8FromPtr(entry.Before),
		AfterAmount:  int8FromPtr(entry.After),
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(entry.UpdatedAt),
	})
}

// Update rewrites an active entry in place.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.OperationEntry) error {
	n, err := queriesFor(r.db, tx).UpdateEntry(ctx, generated.UpdateEntryParams{
		ID:           entry.ID,
		WalletID:     entry.WalletID,
		Direction:    string(entry.Direction),
		Amount:       entry.Amount,
		BeforeAmount: int8FromPtr(entry.Before),
		AfterAmount:  int8FromPtr(entry.After),
		UpdatedAt:    timeToPgTimestamptz(entry.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// Retire soft-deletes an entry so it no longer counts towards its wallet.
func (r *EntryRepository) Retire(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	n, err := queriesFor(r.db, tx).RetireEntry(ctx, generated.RetireEntryParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// SumByDirection aggregates the active entries of active operations for one wallet.
func (r *EntryRepository) SumByDirection(ctx context.Context, tx usecase.Transaction, walletID string) (domain.DirectionSums, error) {
	rows, err := queriesFor(r.db, tx).SumEntriesByDirection(ctx, walletID)
	if err != nil {
		return domain.DirectionSums{}, err
	}

	var sums domain.DirectionSums
	for _, row := range rows {
		addDirectionSum(&sums, row.Direction, row.Total)
	}

	return sums, nil
}

// SumByDirectionAt aggregates entries whose operation was created at or before at.
func (r *EntryRepository) SumByDirectionAt(ctx context.Context, walletID string, at time.Time) (domain.DirectionSums, error) {
	rows, err := r.queries.SumEntriesByDirectionAt(ctx, generated.SumEntriesByDirectionAtParams{
		WalletID: walletID,
		At:       timeToPgTimestamptz(at),
	})
	if err != nil {
		return domain.DirectionSums{}, err
	}

	var sums domain.DirectionSums
	for _, row := range rows {
		addDirectionSum(&sums, row.Direction, row.Total)
	}

	return sums, nil
}

// ListByWallet returns the counted entries of a wallet, newest first.
func (r *EntryRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.OperationEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	rows, err := r.queries.ListEntriesByWallet(ctx, generated.ListEntriesByWalletParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.OperationEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

func addDirectionSum(sums *domain.DirectionSums, direction string, total int64) {
	switch domain.Direction(direction) {
	case domain.DirectionCredit:
		sums.Credit += total
	case domain.DirectionDebit:
		sums.Debit += total
	}
}

func rowToEntry(row generated.OperationEntry) *domain.OperationEntry {
	return &domain.OperationEntry{
		ID:          row.ID,
		OperationID: row.OperationID,
		WalletID:    row.WalletID,
		Direction:   domain.Direction(row.Direction),
		Amount:      row.Amount,
		Before:      ptrFromInt8(row.BeforeAmount),
		After:       ptrFromInt8(row.AfterAmount),
		Deleted:     row.Deleted,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
