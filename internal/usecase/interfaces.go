package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/iho/walletledger/internal/usecase Retrier,ReportRenderer,Cache,ReferenceRepository

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	// GetByIDsForUpdate locks the wallets in ascending id order, deleted ones
	// included so their balances can still be recalculated. Missing ids are skipped.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Wallet, error)
	// UpdateBalance is the only write path for the cached amount and status.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance domain.Balance, updatedAt time.Time) error
	// List returns wallets ordered by name then id.
	List(ctx context.Context, filter WalletFilter) ([]*domain.Wallet, error)
}

// WalletFilter narrows wallet listings.
type WalletFilter struct {
	Category       domain.WalletCategoryFilter
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// OperationRepository defines data access for operations.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.Operation) error
	// GetByID returns the non-deleted operation hydrated with its type and active entries.
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	// GetByIDForUpdate locks the non-deleted operation row and loads its active entries.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Operation, error)
	Update(ctx context.Context, tx Transaction, op *domain.Operation) error
	MarkDeleted(ctx context.Context, tx Transaction, id, updatedByID string, updatedAt time.Time) error
}

// EntryRepository defines data access for operation entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.OperationEntry) error
	Update(ctx context.Context, tx Transaction, entry *domain.OperationEntry) error
	Retire(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
	// SumByDirection aggregates active entries of active operations for one wallet.
	// A nil tx reads outside any transaction.
	SumByDirection(ctx context.Context, tx Transaction, walletID string) (domain.DirectionSums, error)
	SumByDirectionAt(ctx context.Context, walletID string, at time.Time) (domain.DirectionSums, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.OperationEntry, error)
}

// ReferenceRepository exposes the reference data the ledger depends on.
type ReferenceRepository interface {
	GetOperationType(ctx context.Context, id string) (*domain.OperationType, error)
	GetCurrency(ctx context.Context, id string) (*domain.Currency, error)
}

// ReportRepository reads the entry log for report projections.
// Returned operations carry their active entries ordered by creation time
// then id, and every entry carries its wallet (deleted wallets included).
type ReportRepository interface {
	// ListOperations returns non-deleted operations ordered by creation time then id.
	ListOperations(ctx context.Context, filter ReportFilter) ([]*domain.Operation, error)
	// ListConversionOperations returns non-deleted operations that carry a
	// conversion group id, ordered by creation time then id.
	ListConversionOperations(ctx context.Context, filter ReportFilter) ([]*domain.Operation, error)
}

// ReportFilter narrows report queries.
type ReportFilter struct {
	TypeIDs []string
	From    *time.Time
	To      *time.Time
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a whole unit of work on transient contention.
// Exhausted contention must surface as domain.ErrConflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}

// ReportRenderer turns tabular rows into a binary spreadsheet.
type ReportRenderer interface {
	Render(sheet string, headers []string, rows [][]any) ([]byte, error)
}
