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

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// GetByID retrieves a non-deleted wallet.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDForUpdate retrieves a wallet with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	row, err := queriesFor(r.db, tx).GetWalletByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDsForUpdate locks the wallets in ascending id order, deleted ones included. Missing ids are skipped.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	sorted := domain.UniqueSorted(ids)
	if len(sorted) == 0 {
		return nil, nil
	}

	rows, err := queriesFor(r.db, tx).GetWalletsByIDsForUpdate(ctx, sorted)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// UpdateBalance writes the cached amount and status of a wallet.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Balance, updatedAt time.Time) error {
	n, err := queriesFor(r.db, tx).UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		ID:            id,
		Amount:        balance.Amount,
		BalanceStatus: string(balance.Status),
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// List returns wallets ordered by name then id.
func (r *WalletRepository) List(ctx context.Context, filter usecase.WalletFilter) ([]*domain.Wallet, error) {
	limit, offset := domain.ValidatePagination(filter.Limit, filter.Offset)

	category := filter.Category
	if category == "" {
		category = domain.WalletFilterAll
	}

	rows, err := r.queries.ListWallets(ctx, generated.ListWalletsParams{
		IncludeDeleted: filter.IncludeDeleted,
		Category:       string(category),
		Limit:          int32(limit),
		Offset:         int32(offset),
	})
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:            row.ID,
		Name:          row.Name,
		CurrencyID:    row.CurrencyID,
		Category:      domain.WalletCategory(row.Category),
		Amount:        row.Amount,
		BalanceStatus: domain.BalanceStatus(row.BalanceStatus),
		Deleted:       row.Deleted,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
