package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// Adjustment result messages.
const (
	adjustmentActionCredit = "пополнение"
	adjustmentActionDebit  = "списание"
	adjustmentNoopMessage  = "Корректировка не требуется: баланс кошелька уже равен целевой сумме"
)

// AdjustmentUseCase synthesizes corrective entries that bring a wallet to a target balance.
type AdjustmentUseCase struct {
	txManager     TransactionManager
	retrier       Retrier
	operationRepo OperationRepository
	entryRepo     EntryRepository
	walletRepo    WalletRepository
	referenceRepo ReferenceRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	recalculator  *BalanceRecalculator
	idGen         IDGenerator
	logger        *logging.Logger
	metrics       *metrics.Metrics
}

// NewAdjustmentUseCase creates a new AdjustmentUseCase.
// referenceRepo must read through to storage; a cached type may already be deleted.
func NewAdjustmentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	operationRepo OperationRepository,
	entryRepo EntryRepository,
	walletRepo WalletRepository,
	referenceRepo ReferenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	recalculator *BalanceRecalculator,
	idGen IDGenerator,
	logger *logging.Logger,
	metrics *metrics.Metrics,
) *AdjustmentUseCase {
	if logger == nil {
		logger = logging.Nop()
	}

	return &AdjustmentUseCase{
		txManager:     txManager,
		retrier:       retrier,
		operationRepo: operationRepo,
		entryRepo:     entryRepo,
		walletRepo:    walletRepo,
		referenceRepo: referenceRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		recalculator:  recalculator,
		idGen:         idGen,
		logger:        logger,
		metrics:       metrics,
	}
}

// AdjustBalanceInput represents input for a balance adjustment.
type AdjustBalanceInput struct {
	WalletID     string
	TypeID       string
	TargetAmount int64
	Description  *string
}

// AdjustmentResult describes the outcome of an adjustment.
// Operation is nil when the wallet already matched the target.
type AdjustmentResult struct {
	Operation        *domain.Operation
	Message          string
	PreviousAmount   int64
	NewAmount        int64
	AdjustmentAmount int64
}

// AdjustBalance brings the ledger-derived balance of a wallet to the target amount.
func (uc *AdjustmentUseCase) AdjustBalance(ctx context.Context, input AdjustBalanceInput) (*AdjustmentResult, error) {
	if strings.TrimSpace(input.WalletID) == "" {
		return nil, domain.ErrMissingWallet
	}
	if input.TypeID == "" {
		return nil, domain.ErrMissingType
	}
	if err := domain.ValidateTargetAmount(input.TargetAmount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	var result *AdjustmentResult
	err := runWithRetry(ctx, uc.retrier, func() error {
		res, err := uc.adjustOnce(ctx, input)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		uc.logger.WarnCtx(ctx, "balance adjustment failed", "wallet_id", input.WalletID, "error", err)
		if uc.metrics != nil {
			uc.metrics.OperationErrors.WithLabelValues("adjust", errorKind(err)).Inc()
		}
		return nil, err
	}

	if result.Operation == nil {
		uc.logger.InfoCtx(ctx, "balance adjustment skipped", "wallet_id", input.WalletID, "amount", result.NewAmount)
		return result, nil
	}

	if uc.metrics != nil {
		uc.metrics.AdjustmentsApplied.WithLabelValues(string(result.Operation.Entries[0].Direction)).Inc()
		uc.metrics.AdjustmentAmount.Observe(float64(result.AdjustmentAmount))
	}

	uc.logger.InfoCtx(ctx, "balance adjusted",
		"wallet_id", input.WalletID,
		"operation_id", result.Operation.ID,
		"previous_amount", result.PreviousAmount,
		"new_amount", result.NewAmount,
	)

	op, err := uc.operationRepo.GetByID(ctx, result.Operation.ID)
	if err != nil {
		return nil, err
	}
	result.Operation = op

	return result, nil
}

func (uc *AdjustmentUseCase) adjustOnce(ctx context.Context, input AdjustBalanceInput) (*AdjustmentResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	if _, err := uc.referenceRepo.GetOperationType(txCtx, input.TypeID); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, input.WalletID)
	if err != nil {
		return nil, err
	}

	// The cached wallet amount may be stale, so the ledger is the reference.
	calculated, err := uc.recalculator.CalculatedAmount(txCtx, tx, wallet.ID)
	if err != nil {
		return nil, err
	}

	difference := input.TargetAmount - calculated

	if difference == 0 {
		if _, err := uc.recalculator.RecalculateWallets(txCtx, tx, []string{wallet.ID}); err != nil {
			return nil, err
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, err
		}
		return &AdjustmentResult{
			Message:        adjustmentNoopMessage,
			PreviousAmount: calculated,
			NewAmount:      calculated,
		}, nil
	}

	direction := domain.DirectionCredit
	action := adjustmentActionCredit
	amount := difference
	if difference < 0 {
		direction = domain.DirectionDebit
		action = adjustmentActionDebit
		amount = -difference
	}

	now := time.Now().UTC()
	actorID := domain.ActorID(ctx)

	op := &domain.Operation{
		ID:          uc.idGen.Generate(),
		TypeID:      input.TypeID,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      actorID,
		UpdatedByID: actorID,
	}
	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	inputs := []domain.EntryInput{{WalletID: wallet.ID, Direction: direction, Amount: amount}}
	if err := insertEntries(txCtx, tx, uc.entryRepo, uc.recalculator, uc.idGen, op, inputs, now); err != nil {
		return nil, err
	}

	balances, err := uc.recalculator.RecalculateWallets(txCtx, tx, []string{wallet.ID})
	if err != nil {
		return nil, err
	}
	newAmount := balances[wallet.ID].Amount

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   wallet.ID,
			AggregateType: domain.AggregateTypeWallet,
			EventType:     domain.EventTypeWalletAdjusted,
			Payload: domain.MarshalState(domain.WalletAdjustedEvent{
				WalletID:         wallet.ID,
				OperationID:      op.ID,
				PreviousAmount:   calculated,
				NewAmount:        newAmount,
				AdjustmentAmount: amount,
				Direction:        string(direction),
				ActorID:          actorID,
			}),
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       actorID,
			Action:       string(domain.AuditActionWalletAdjust),
			ResourceType: domain.AuditResourceWallet,
			ResourceID:   wallet.ID,
			RequestID:    requestIDFromContext(ctx),
			BeforeState:  domain.JSON{"amount": calculated},
			AfterState:   domain.JSON{"amount": newAmount, "operation_id": op.ID},
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &AdjustmentResult{
		Operation:        op,
		Message:          adjustmentMessage(action, wallet, amount),
		PreviousAmount:   calculated,
		NewAmount:        newAmount,
		AdjustmentAmount: amount,
	}, nil
}

func adjustmentMessage(action string, wallet *domain.Wallet, amount int64) string {
	name := wallet.Name
	if name == "" {
		name = wallet.ID
	}
	return fmt.Sprintf("Выполнено %s кошелька %q на %d", action, name, amount)
}
