package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(db generated.DBTX) *OperationRepository {
	return &OperationRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts the operation row. Entries are written by EntryRepository.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	return queriesFor(r.db, tx).CreateOperation(ctx, generated.CreateOperationParams{
		ID:                op.ID,
		TypeID:            op.TypeID,
		Description:       textFromPtr(op.Description),
		ConversionGroupID: textFromPtr(op.ConversionGroupID),
		ApplicationID:     int8FromPtr(op.ApplicationID),
		UserID:            op.UserID,
		UpdatedByID:       op.UpdatedByID,
		CreatedAt:         timeToPgTimestamptz(op.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(op.UpdatedAt),
	})
}

// GetByID returns the operation with its type and active entries.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	row, err := r.queries.GetOperationByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	op := rowToOperation(generated.Operation{
		ID:                row.ID,
		TypeID:            row.TypeID,
		Description:       row.Description,
		ConversionGroupID: row.ConversionGroupID,
		ApplicationID:     row.ApplicationID,
		UserID:            row.UserID,
		UpdatedByID:       row.UpdatedByID,
		Deleted:           row.Deleted,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	})
	if row.TypeName.Valid {
		op.Type = &domain.OperationType{
			ID:      row.TypeID,
			Name:    row.TypeName.String,
			Deleted: row.TypeDeleted.Bool,
		}
	}

	if err := loadEntries(ctx, r.queries, []*domain.Operation{op}); err != nil {
		return nil, err
	}

	return op, nil
}

// GetByIDForUpdate locks the operation row and loads its active entries inside tx.
func (r *OperationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Operation, error) {
	queries := queriesFor(r.db, tx)

	row, err := queries.GetOperationByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	op := rowToOperation(row)
	if err := loadEntries(ctx, queries, []*domain.Operation{op}); err != nil {
		return nil, err
	}

	return op, nil
}

// Update rewrites the mutable operation columns.
func (r *OperationRepository) Update(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	n, err := queriesFor(r.db, tx).UpdateOperation(ctx, generated.UpdateOperationParams{
		ID:                op.ID,
		TypeID:            op.TypeID,
		Description:       textFromPtr(op.Description),
		ConversionGroupID: textFromPtr(op.ConversionGroupID),
		ApplicationID:     int8FromPtr(op.ApplicationID),
		UpdatedByID:       op.UpdatedByID,
		UpdatedAt:         timeToPgTimestamptz(op.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// MarkDeleted soft-deletes the operation. Its entries stop counting through the join.
func (r *OperationRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id, updatedByID string, updatedAt time.Time) error {
	n, err := queriesFor(r.db, tx).MarkOperationDeleted(ctx, generated.MarkOperationDeletedParams{
		ID:          id,
		UpdatedByID: updatedByID,
		UpdatedAt:   timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// loadEntries attaches active entries, with their wallets, to ops.
func loadEntries(ctx context.Context, queries *generated.Queries, ops []*domain.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	ids := make([]string, 0, len(ops))
	byID := make(map[string]*domain.Operation, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
		byID[op.ID] = op
	}

	rows, err := queries.ListActiveEntriesByOperations(ctx, ids)
	if err != nil {
		return err
	}

	for _, row := range rows {
		op, ok := byID[row.OperationID]
		if !ok {
			continue
		}

		entry := rowToEntry(generated.OperationEntry{
			ID:           row.ID,
			OperationID:  row.OperationID,
			WalletID:     row.WalletID,
			Direction:    row.Direction,
			Amount:       row.Amount,
			BeforeAmount: row.BeforeAmount,
			AfterAmount:  row.AfterAmount,
			Deleted:      row.Deleted,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		})
		entry.Wallet = &domain.Wallet{
			ID:            row.WalletID,
			Name:          row.WalletName,
			CurrencyID:    row.WalletCurrencyID,
			Category:      domain.WalletCategory(row.WalletCategory),
			Amount:        row.WalletAmount,
			BalanceStatus: domain.BalanceStatus(row.WalletBalanceStatus),
			Deleted:       row.WalletDeleted,
		}

		op.Entries = append(op.Entries, entry)
	}

	return nil
}

func rowToOperation(row generated.Operation) *domain.Operation {
	return &domain.Operation{
		ID:                row.ID,
		TypeID:            row.TypeID,
		Description:       ptrFromText(row.Description),
		ConversionGroupID: ptrFromText(row.ConversionGroupID),
		ApplicationID:     ptrFromInt8(row.ApplicationID),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
		UserID:            row.UserID,
		UpdatedByID:       row.UpdatedByID,
		Deleted:           row.Deleted,
	}
}
