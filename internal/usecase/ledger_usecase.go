package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// LedgerUseCase handles ledger-wide checks.
type LedgerUseCase struct {
	walletRepo WalletRepository
	entryRepo  EntryRepository
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(walletRepo WalletRepository, entryRepo EntryRepository, logger *logging.Logger, metrics *metrics.Metrics) *LedgerUseCase {
	if logger == nil {
		logger = logging.Nop()
	}

	return &LedgerUseCase{
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		logger:     logger,
		metrics:    metrics,
	}
}

// ConsistencyReport summarizes a ledger-wide balance check.
type ConsistencyReport struct {
	TotalWallets      int
	ReconciledWallets int
	Discrepancies     []*ReconciliationResult
	Consistent        bool
	CheckedAt         time.Time
}

// CheckConsistency verifies that every active wallet's cached balance equals its ledger derivation.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	for offset := 0; ; offset += domain.MaxPageSize {
		wallets, err := uc.walletRepo.List(ctx, WalletFilter{
			Category: domain.WalletFilterAll,
			Limit:    domain.MaxPageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, err
		}

		for _, wallet := range wallets {
			result, err := reconcileWallet(ctx, uc.entryRepo, wallet)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile wallet %s: %w", wallet.ID, err)
			}

			report.TotalWallets++
			if result.IsReconciled {
				report.ReconciledWallets++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(wallets) < domain.MaxPageSize {
			break
		}
	}

	report.Consistent = len(report.Discrepancies) == 0
	report.CheckedAt = time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.BalanceDiscrepancies.Set(float64(len(report.Discrepancies)))
	}

	if !report.Consistent {
		uc.logger.WarnCtx(ctx, "ledger inconsistency detected",
			"wallets", report.TotalWallets,
			"discrepancies", len(report.Discrepancies),
		)
	}

	return report, nil
}
