package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
)

// WalletUseCase exposes wallet balances and their entry history.
type WalletUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	walletRepo   WalletRepository
	entryRepo    EntryRepository
	auditRepo    AuditRepository
	recalculator *BalanceRecalculator
	idGen        IDGenerator
	logger       *logging.Logger
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	retrier Retrier,
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	recalculator *BalanceRecalculator,
	idGen IDGenerator,
	logger *logging.Logger,
) *WalletUseCase {
	if logger == nil {
		logger = logging.Nop()
	}

	return &WalletUseCase{
		txManager:    txManager,
		retrier:      retrier,
		walletRepo:   walletRepo,
		entryRepo:    entryRepo,
		auditRepo:    auditRepo,
		recalculator: recalculator,
		idGen:        idGen,
		logger:       logger,
	}
}

// ListWalletsInput represents input for listing wallets.
type ListWalletsInput struct {
	Category       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListEntriesInput represents input for listing a wallet's entries.
type ListEntriesInput struct {
	WalletID string
	Limit    int
	Offset   int
}

// ReconciliationResult compares a wallet's cached balance with its ledger derivation.
type ReconciliationResult struct {
	WalletID         string
	RecordedAmount   int64
	RecordedStatus   domain.BalanceStatus
	CalculatedAmount int64
	CalculatedStatus domain.BalanceStatus
	Difference       int64
	IsReconciled     bool
	LastChecked      time.Time
}

// GetWallet returns a wallet by id.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// ListWallets lists wallets matching a category filter.
func (uc *WalletUseCase) ListWallets(ctx context.Context, input ListWalletsInput) ([]*domain.Wallet, error) {
	category, err := domain.ParseWalletCategoryFilter(input.Category)
	if err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.walletRepo.List(ctx, WalletFilter{
		Category:       category,
		IncludeDeleted: input.IncludeDeleted,
		Limit:          limit,
		Offset:         offset,
	})
}

// ListEntries lists the active entries of a wallet, newest first.
func (uc *WalletUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.OperationEntry, error) {
	if _, err := uc.walletRepo.GetByID(ctx, input.WalletID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByWallet(ctx, input.WalletID, limit, offset)
}

// GetHistoricalBalance derives the balance from entries of operations created at or before at.
func (uc *WalletUseCase) GetHistoricalBalance(ctx context.Context, walletID string, at time.Time) (domain.Balance, error) {
	if _, err := uc.walletRepo.GetByID(ctx, walletID); err != nil {
		return domain.Balance{}, err
	}

	sums, err := uc.entryRepo.SumByDirectionAt(ctx, walletID, at)
	if err != nil {
		return domain.Balance{}, err
	}

	return domain.DeriveBalance(sums), nil
}

// Recalculate re-derives one wallet's balance from the ledger.
func (uc *WalletUseCase) Recalculate(ctx context.Context, walletID string) (*domain.Wallet, error) {
	err := runWithRetry(ctx, uc.retrier, func() error {
		return uc.recalculateOnce(ctx, walletID)
	})
	if err != nil {
		uc.logger.WarnCtx(ctx, "wallet recalculation failed", "wallet_id", walletID, "error", err)
		return nil, err
	}

	return uc.walletRepo.GetByID(ctx, walletID)
}

func (uc *WalletUseCase) recalculateOnce(ctx context.Context, walletID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, walletID)
	if err != nil {
		return err
	}
	before := wallet.Balance()

	balances, err := uc.recalculator.RecalculateWallets(txCtx, tx, []string{walletID})
	if err != nil {
		return err
	}
	after := balances[walletID]

	if before != after {
		uc.logger.WarnCtx(ctx, "cached wallet balance drifted from ledger",
			"wallet_id", walletID,
			"cached", before.Amount,
			"derived", after.Amount,
		)
	}

	if uc.auditRepo != nil {
		now := time.Now().UTC()
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       domain.ActorID(ctx),
			Action:       string(domain.AuditActionWalletRecalculate),
			ResourceType: domain.AuditResourceWallet,
			ResourceID:   walletID,
			RequestID:    requestIDFromContext(ctx),
			BeforeState:  domain.MarshalState(before),
			AfterState:   domain.MarshalState(after),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

// Reconcile compares the cached balance of a wallet with the ledger derivation without writing.
func (uc *WalletUseCase) Reconcile(ctx context.Context, walletID string) (*ReconciliationResult, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	return reconcileWallet(ctx, uc.entryRepo, wallet)
}

func reconcileWallet(ctx context.Context, entryRepo EntryRepository, wallet *domain.Wallet) (*ReconciliationResult, error) {
	sums, err := entryRepo.SumByDirection(ctx, nil, wallet.ID)
	if err != nil {
		return nil, err
	}

	derived := domain.DeriveBalance(sums)

	return &ReconciliationResult{
		WalletID:         wallet.ID,
		RecordedAmount:   wallet.Amount,
		RecordedStatus:   wallet.BalanceStatus,
		CalculatedAmount: derived.Amount,
		CalculatedStatus: derived.Status,
		Difference:       wallet.Amount - derived.Amount,
		IsReconciled:     wallet.Balance() == derived,
		LastChecked:      time.Now().UTC(),
	}, nil
}
