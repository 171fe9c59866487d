package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// OperationUseCase mutates the entry log and keeps wallet balances derived from it.
type OperationUseCase struct {
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

// NewOperationUseCase creates a new OperationUseCase.
// referenceRepo must read through to storage; a cached type may already be deleted.
func NewOperationUseCase(
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
) *OperationUseCase {
	if logger == nil {
		logger = logging.Nop()
	}

	return &OperationUseCase{
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

// CreateOperationInput represents input for creating an operation.
type CreateOperationInput struct {
	TypeID            string
	Description       *string
	ConversionGroupID *string
	ApplicationID     *int64
	CreatedAt         time.Time
	Entries           []domain.EntryInput
}

// UpdateOperationInput represents input for updating an operation.
// Nil fields are left untouched. A non-nil Entries list replaces the
// operation's entries: items with an id are rewritten in place, items
// without one are appended, and active entries missing from the list are retired.
type UpdateOperationInput struct {
	ID                string
	TypeID            *string
	Description       *string
	ConversionGroupID *string
	ApplicationID     *int64
	Entries           []domain.EntryInput
}

// GetOperation returns a hydrated, non-deleted operation.
func (uc *OperationUseCase) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return uc.operationRepo.GetByID(ctx, id)
}

// CreateOperation inserts an operation with its entries and recalculates every referenced wallet.
func (uc *OperationUseCase) CreateOperation(ctx context.Context, input CreateOperationInput) (*domain.Operation, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	start := time.Now()

	var opID string
	err := runWithRetry(ctx, uc.retrier, func() error {
		op, err := uc.createOnce(ctx, input)
		if err != nil {
			return err
		}
		opID = op.ID
		return nil
	})
	uc.observe("create", start, err)
	if err != nil {
		uc.logger.WarnCtx(ctx, "create operation failed", "type_id", input.TypeID, "error", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsCreated.Inc()
		for _, e := range input.Entries {
			uc.metrics.EntryAmount.Observe(float64(e.Amount))
		}
	}

	uc.logger.InfoCtx(ctx, "operation created", "operation_id", opID, "entries", len(input.Entries))

	return uc.operationRepo.GetByID(ctx, opID)
}

func (uc *OperationUseCase) createOnce(ctx context.Context, input CreateOperationInput) (*domain.Operation, error) {
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

	// Lock wallets in sorted order before reading their aggregates.
	walletIDs := entryWalletIDs(input.Entries)
	if err := lockWallets(txCtx, uc.walletRepo, tx, walletIDs, walletIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	actorID := domain.ActorID(ctx)

	op := &domain.Operation{
		ID:                uc.idGen.Generate(),
		TypeID:            input.TypeID,
		Description:       input.Description,
		ConversionGroupID: input.ConversionGroupID,
		ApplicationID:     input.ApplicationID,
		CreatedAt:         input.CreatedAt.UTC(),
		UpdatedAt:         now,
		UserID:            actorID,
		UpdatedByID:       actorID,
	}

	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	if err := insertEntries(txCtx, tx, uc.entryRepo, uc.recalculator, uc.idGen, op, input.Entries, now); err != nil {
		return nil, err
	}

	balances, err := uc.recalculator.RecalculateWallets(txCtx, tx, walletIDs)
	if err != nil {
		return nil, err
	}

	if err := uc.recordChange(txCtx, ctx, tx, op, domain.EventTypeOperationCreated, domain.AuditActionOperationCreate, nil, balances, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return op, nil
}

// UpdateOperation patches an operation and recalculates the wallets touched before and after the change.
func (uc *OperationUseCase) UpdateOperation(ctx context.Context, input UpdateOperationInput) (*domain.Operation, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	start := time.Now()

	err := runWithRetry(ctx, uc.retrier, func() error {
		return uc.updateOnce(ctx, input)
	})
	uc.observe("update", start, err)
	if err != nil {
		uc.logger.WarnCtx(ctx, "update operation failed", "operation_id", input.ID, "error", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsUpdated.Inc()
	}

	uc.logger.InfoCtx(ctx, "operation updated", "operation_id", input.ID)

	return uc.operationRepo.GetByID(ctx, input.ID)
}

func (uc *OperationUseCase) updateOnce(ctx context.Context, input UpdateOperationInput) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	if input.TypeID != nil {
		if _, err := uc.referenceRepo.GetOperationType(txCtx, *input.TypeID); err != nil {
			return err
		}
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(txCtx, tx, input.ID)
	if err != nil {
		return err
	}

	beforeState := domain.MarshalState(op)
	oldWalletIDs := op.WalletIDs()

	var newWalletIDs []string
	if input.Entries != nil {
		for _, in := range input.Entries {
			if in.ID == "" {
				continue
			}
			if e, ok := op.EntryByID(in.ID); !ok || e.Deleted {
				return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, in.ID)
			}
		}
		newWalletIDs = entryWalletIDs(input.Entries)
	}

	// The old wallet of a reassigned entry must be recalculated too.
	affected := domain.UniqueSorted(append(append([]string{}, oldWalletIDs...), newWalletIDs...))
	if err := lockWallets(txCtx, uc.walletRepo, tx, affected, newWalletIDs); err != nil {
		return err
	}

	now := time.Now().UTC()
	applyOperationPatch(op, input)
	op.UpdatedAt = now
	op.UpdatedByID = domain.ActorID(ctx)

	if err := uc.operationRepo.Update(txCtx, tx, op); err != nil {
		return err
	}

	if input.Entries != nil {
		if err := uc.replaceEntries(txCtx, tx, op, input.Entries, now); err != nil {
			return err
		}
	}

	balances, err := uc.recalculator.RecalculateWallets(txCtx, tx, affected)
	if err != nil {
		return err
	}

	if err := uc.recordChange(txCtx, ctx, tx, op, domain.EventTypeOperationUpdated, domain.AuditActionOperationUpdate, beforeState, balances, now); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// replaceEntries rewrites, appends and retires entries so the operation ends up with exactly inputs.
func (uc *OperationUseCase) replaceEntries(ctx context.Context, tx Transaction, op *domain.Operation, inputs []domain.EntryInput, now time.Time) error {
	kept := make(map[string]struct{}, len(inputs))
	existing := op.ActiveEntries()

	for _, in := range inputs {
		if in.ID == "" {
			entry := &domain.OperationEntry{
				ID:          uc.idGen.Generate(),
				OperationID: op.ID,
				WalletID:    in.WalletID,
				Direction:   in.Direction,
				Amount:      in.Amount,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
				return err
			}
			op.Entries = append(op.Entries, entry)
			kept[entry.ID] = struct{}{}
			continue
		}

		entry, _ := op.EntryByID(in.ID)
		if entry.WalletID != in.WalletID || entry.Direction != in.Direction || entry.Amount != in.Amount {
			// Snapshots described the old movement.
			entry.Before, entry.After = nil, nil
		}
		entry.WalletID = in.WalletID
		entry.Direction = in.Direction
		entry.Amount = in.Amount
		entry.UpdatedAt = now

		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}
		kept[entry.ID] = struct{}{}
	}

	for _, entry := range existing {
		if _, ok := kept[entry.ID]; ok {
			continue
		}
		if err := uc.entryRepo.Retire(ctx, tx, entry.ID, now); err != nil {
			return err
		}
		entry.Deleted = true
		entry.UpdatedAt = now
	}

	return nil
}

// DeleteOperation soft-deletes an operation and recalculates the wallets its entries referenced.
func (uc *OperationUseCase) DeleteOperation(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrOperationNotFound
	}

	start := time.Now()

	err := runWithRetry(ctx, uc.retrier, func() error {
		return uc.deleteOnce(ctx, id)
	})
	uc.observe("delete", start, err)
	if err != nil {
		uc.logger.WarnCtx(ctx, "delete operation failed", "operation_id", id, "error", err)
		return err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsDeleted.Inc()
	}

	uc.logger.InfoCtx(ctx, "operation deleted", "operation_id", id)

	return nil
}

func (uc *OperationUseCase) deleteOnce(ctx context.Context, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return err
	}

	beforeState := domain.MarshalState(op)
	walletIDs := op.WalletIDs()

	if err := lockWallets(txCtx, uc.walletRepo, tx, walletIDs, nil); err != nil {
		return err
	}

	now := time.Now().UTC()
	actorID := domain.ActorID(ctx)

	if err := uc.operationRepo.MarkDeleted(txCtx, tx, id, actorID, now); err != nil {
		return err
	}

	op.Deleted = true
	op.UpdatedAt = now
	op.UpdatedByID = actorID

	balances, err := uc.recalculator.RecalculateWallets(txCtx, tx, walletIDs)
	if err != nil {
		return err
	}

	if err := uc.recordChange(txCtx, ctx, tx, op, domain.EventTypeOperationDeleted, domain.AuditActionOperationDelete, beforeState, balances, now); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// recordChange writes the outbox event and audit log of a mutation inside tx.
// reqCtx carries the caller identity, txCtx bounds the transaction.
func (uc *OperationUseCase) recordChange(
	txCtx, reqCtx context.Context,
	tx Transaction,
	op *domain.Operation,
	eventType string,
	action domain.AuditAction,
	beforeState domain.JSON,
	balances map[string]domain.Balance,
	now time.Time,
) error {
	actorID := domain.ActorID(reqCtx)

	payload := domain.OperationChangedEvent{
		OperationID: op.ID,
		TypeID:      op.TypeID,
		ActorID:     actorID,
		Wallets:     balanceChanges(balances),
		EventAt:     now.Format(time.RFC3339Nano),
	}
	if op.ConversionGroupID != nil {
		payload.ConversionGroupID = *op.ConversionGroupID
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   op.ID,
			AggregateType: domain.AggregateTypeOperation,
			EventType:     eventType,
			Payload:       domain.MarshalState(payload),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       actorID,
			Action:       string(action),
			ResourceType: domain.AuditResourceOperation,
			ResourceID:   op.ID,
			RequestID:    requestIDFromContext(reqCtx),
			BeforeState:  beforeState,
			AfterState:   domain.MarshalState(op),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return err
		}
		if uc.metrics != nil {
			uc.metrics.AuditLogsCreated.WithLabelValues(auditLog.Action, auditLog.Status).Inc()
		}
	}

	return nil
}

func (uc *OperationUseCase) observe(action string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.OperationDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.OperationErrors.WithLabelValues(action, errorKind(err)).Inc()
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.TxConflicts.Inc()
		}
	}
}

func validateCreateInput(input CreateOperationInput) error {
	if input.TypeID == "" {
		return domain.ErrMissingType
	}

	if input.CreatedAt.IsZero() {
		return domain.ErrMissingCreationTime
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return err
	}

	for _, e := range input.Entries {
		if e.ID != "" {
			return fmt.Errorf("%w: new operations cannot reference entry ids", domain.ErrValidation)
		}
	}

	return domain.ValidateEntries(input.Entries)
}

func validateUpdateInput(input UpdateOperationInput) error {
	if input.ID == "" {
		return domain.ErrOperationNotFound
	}

	if input.TypeID != nil && *input.TypeID == "" {
		return domain.ErrMissingType
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return err
	}

	if input.Entries != nil {
		return domain.ValidateEntries(input.Entries)
	}

	return nil
}

func applyOperationPatch(op *domain.Operation, input UpdateOperationInput) {
	if input.TypeID != nil {
		op.TypeID = *input.TypeID
		op.Type = nil
	}
	if input.Description != nil {
		op.Description = input.Description
	}
	if input.ConversionGroupID != nil {
		op.ConversionGroupID = input.ConversionGroupID
	}
	if input.ApplicationID != nil {
		op.ApplicationID = input.ApplicationID
	}
}

// insertEntries writes new entries of op, stamping each with the wallet balance
// before and after the movement as seen by the ledger inside tx.
func insertEntries(
	ctx context.Context,
	tx Transaction,
	entryRepo EntryRepository,
	recalculator *BalanceRecalculator,
	idGen IDGenerator,
	op *domain.Operation,
	inputs []domain.EntryInput,
	now time.Time,
) error {
	running := make(map[string]int64)

	for _, in := range inputs {
		before, ok := running[in.WalletID]
		if !ok {
			amount, err := recalculator.CalculatedAmount(ctx, tx, in.WalletID)
			if err != nil {
				return err
			}
			before = amount
		}
		after := before + in.Direction.Signed(in.Amount)
		running[in.WalletID] = after

		entry := &domain.OperationEntry{
			ID:          idGen.Generate(),
			OperationID: op.ID,
			WalletID:    in.WalletID,
			Direction:   in.Direction,
			Amount:      in.Amount,
			Before:      &before,
			After:       &after,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}
		op.Entries = append(op.Entries, entry)
	}

	return nil
}

// lockWallets locks ids in ascending order, soft-deleted wallets included.
// Every id in required must exist and be active.
func lockWallets(ctx context.Context, walletRepo WalletRepository, tx Transaction, ids, required []string) error {
	if len(ids) == 0 {
		return nil
	}

	wallets, err := walletRepo.GetByIDsForUpdate(ctx, tx, domain.UniqueSorted(ids))
	if err != nil {
		return err
	}

	active := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		active[w.ID] = !w.Deleted
	}

	for _, id := range required {
		if !active[id] {
			return fmt.Errorf("%w: %s", domain.ErrWalletNotFound, id)
		}
	}

	return nil
}

func entryWalletIDs(inputs []domain.EntryInput) []string {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.WalletID)
	}
	return domain.UniqueSorted(ids)
}

func balanceChanges(balances map[string]domain.Balance) []domain.WalletBalanceChange {
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}

	changes := make([]domain.WalletBalanceChange, 0, len(ids))
	for _, id := range domain.UniqueSorted(ids) {
		changes = append(changes, domain.WalletBalanceChange{
			WalletID: id,
			Amount:   balances[id].Amount,
			Status:   string(balances[id].Status),
		})
	}

	return changes
}
