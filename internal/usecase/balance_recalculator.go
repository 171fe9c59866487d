package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// BalanceRecalculator derives wallet balances from the entry log.
// It is the only component that writes a wallet's amount and balance status.
type BalanceRecalculator struct {
	walletRepo WalletRepository
	entryRepo  EntryRepository
	metrics    *metrics.Metrics
}

// NewBalanceRecalculator creates a new BalanceRecalculator.
func NewBalanceRecalculator(walletRepo WalletRepository, entryRepo EntryRepository, metrics *metrics.Metrics) *BalanceRecalculator {
	return &BalanceRecalculator{
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		metrics:    metrics,
	}
}

// RecalculateWallets re-derives and stores the balance of every given wallet
// inside tx. Ids are deduplicated and processed in ascending order.
func (r *BalanceRecalculator) RecalculateWallets(ctx context.Context, tx Transaction, walletIDs []string) (map[string]domain.Balance, error) {
	ids := domain.UniqueSorted(walletIDs)
	balances := make(map[string]domain.Balance, len(ids))

	for _, id := range ids {
		start := time.Now()

		sums, err := r.entryRepo.SumByDirection(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("sum entries of wallet %s: %w", id, err)
		}

		balance := domain.DeriveBalance(sums)
		if err := r.walletRepo.UpdateBalance(ctx, tx, id, balance, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("update balance of wallet %s: %w", id, err)
		}

		balances[id] = balance

		if r.metrics != nil {
			r.metrics.WalletRecalculations.Inc()
			r.metrics.RecalculationDuration.Observe(time.Since(start).Seconds())
		}
	}

	return balances, nil
}

// CalculatedAmount returns the ledger-derived balance of a wallet without writing it.
func (r *BalanceRecalculator) CalculatedAmount(ctx context.Context, tx Transaction, walletID string) (int64, error) {
	sums, err := r.entryRepo.SumByDirection(ctx, tx, walletID)
	if err != nil {
		return 0, fmt.Errorf("sum entries of wallet %s: %w", walletID, err)
	}

	return domain.DeriveBalance(sums).Amount, nil
}
