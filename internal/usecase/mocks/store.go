package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// Store is an in-memory ledger store. Begin snapshots the whole state and
// Rollback of an uncommitted transaction restores it, so tests can assert
// that failed mutations leave nothing behind.
type Store struct {
	mu sync.Mutex

	wallets    map[string]*domain.Wallet
	operations map[string]*domain.Operation
	entries    map[string]*domain.OperationEntry
	types      map[string]*domain.OperationType
	currencies map[string]*domain.Currency
	outbox     []*domain.OutboxEvent
	audit      []*domain.AuditLog

	snapshot *storeState
	failures map[string]error

	// LockedWallets records the wallet ids each GetByIDsForUpdate call locked.
	LockedWallets [][]string
	Commits       int
	Rollbacks     int
}

type storeState struct {
	wallets    map[string]*domain.Wallet
	operations map[string]*domain.Operation
	entries    map[string]*domain.OperationEntry
	outbox     []*domain.OutboxEvent
	audit      []*domain.AuditLog
}

// Fault injection points.
const (
	FailBegin           = "tx.begin"
	FailCommit          = "tx.commit"
	FailOperationCreate = "operation.create"
	FailEntryCreate     = "entry.create"
	FailUpdateBalance   = "wallet.update_balance"
	FailOutboxCreate    = "outbox.create"
	FailAuditCreate     = "audit.create"
)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets:    make(map[string]*domain.Wallet),
		operations: make(map[string]*domain.Operation),
		entries:    make(map[string]*domain.OperationEntry),
		types:      make(map[string]*domain.OperationType),
		currencies: make(map[string]*domain.Currency),
		failures:   make(map[string]error),
	}
}

// Fail makes the given injection point return err until cleared with a nil err.
func (s *Store) Fail(point string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, point)
		return
	}
	s.failures[point] = err
}

func (s *Store) failure(point string) error {
	return s.failures[point]
}

// AddWallet seeds a wallet.
func (s *Store) AddWallet(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.BalanceStatus == "" {
		w.BalanceStatus = domain.StatusOf(w.Amount)
	}
	s.wallets[w.ID] = copyWallet(w)
}

// AddOperationType seeds an operation type.
func (s *Store) AddOperationType(t *domain.OperationType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	s.types[t.ID] = &c
}

// AddCurrency seeds a currency.
func (s *Store) AddCurrency(c *domain.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	s.currencies[c.ID] = &cc
}

// Wallet returns a copy of a wallet regardless of its deleted flag.
func (s *Store) Wallet(id string) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[id]; ok {
		return copyWallet(w)
	}
	return nil
}

// SetCachedBalance overwrites a wallet's cached amount to simulate drift.
func (s *Store) SetCachedBalance(id string, amount int64, status domain.BalanceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[id]; ok {
		w.Amount = amount
		w.BalanceStatus = status
	}
}

// DeleteWallet soft-deletes a wallet.
func (s *Store) DeleteWallet(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[id]; ok {
		w.Deleted = true
	}
}

// OperationCount returns the number of stored operations, deleted ones included.
func (s *Store) OperationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.operations)
}

// EntriesOf returns copies of all entries of an operation, retired ones included.
func (s *Store) EntriesOf(operationID string) []*domain.OperationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.OperationEntry
	for _, e := range s.entries {
		if e.OperationID == operationID {
			out = append(out, copyEntry(e))
		}
	}
	sortEntries(out)
	return out
}

// OutboxEvents returns the stored outbox events.
func (s *Store) OutboxEvents() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), s.outbox...)
}

// AuditLogs returns the stored audit logs.
func (s *Store) AuditLogs() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.audit...)
}

// Repositories

func (s *Store) TxManager() usecase.TransactionManager { return &storeTxManager{s} }
func (s *Store) Wallets() usecase.WalletRepository { return &storeWallets{s} }
func (s *Store) Operations() usecase.OperationRepository { return &storeOperations{s} }
func (s *Store) Entries() usecase.EntryRepository { return &storeEntries{s} }
func (s *Store) References() usecase.ReferenceRepository { return &storeReferences{s} }
func (s *Store) Reports() usecase.ReportRepository { return &storeReports{s} }
func (s *Store) Outbox() usecase.OutboxRepository { return &storeOutbox{s} }
func (s *Store) Audit() usecase.AuditRepository { return &storeAudit{s} }

// Transactions

type storeTxManager struct{ s *Store }

func (m *storeTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.failure(FailBegin); err != nil {
		return nil, err
	}
	if m.s.snapshot != nil {
		return nil, errors.New("mocks: nested transactions are not supported")
	}
	m.s.snapshot = m.s.capture()
	return &storeTx{s: m.s}, nil
}

type storeTx struct {
	s    *Store
	done bool
}

func (t *storeTx) Commit(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return errors.New("mocks: transaction already closed")
	}
	if err := t.s.failure(FailCommit); err != nil {
		return err
	}
	t.done = true
	t.s.snapshot = nil
	t.s.Commits++
	return nil
}

func (t *storeTx) Rollback(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.s.restore(t.s.snapshot)
	t.s.snapshot = nil
	t.s.Rollbacks++
	return nil
}

func (s *Store) capture() *storeState {
	st := &storeState{
		wallets:    make(map[string]*domain.Wallet, len(s.wallets)),
		operations: make(map[string]*domain.Operation, len(s.operations)),
		entries:    make(map[string]*domain.OperationEntry, len(s.entries)),
		outbox:     append([]*domain.OutboxEvent(nil), s.outbox...),
		audit:      append([]*domain.AuditLog(nil), s.audit...),
	}
	for id, w := range s.wallets {
		st.wallets[id] = copyWallet(w)
	}
	for id, op := range s.operations {
		st.operations[id] = copyOperationRow(op)
	}
	for id, e := range s.entries {
		st.entries[id] = copyEntry(e)
	}
	return st
}

func (s *Store) restore(st *storeState) {
	if st == nil {
		return
	}
	s.wallets = st.wallets
	s.operations = st.operations
	s.entries = st.entries
	s.outbox = st.outbox
	s.audit = st.audit
}

// Wallets

type storeWallets struct{ s *Store }

func (r *storeWallets) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[id]
	if !ok || w.Deleted {
		return nil, domain.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (r *storeWallets) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	wallets, err := r.GetByIDsForUpdate(ctx, tx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, domain.ErrWalletNotFound
	}
	return wallets[0], nil
}

func (r *storeWallets) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sorted := domain.UniqueSorted(ids)
	wallets := make([]*domain.Wallet, 0, len(sorted))
	locked := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if w, ok := r.s.wallets[id]; ok {
			wallets = append(wallets, copyWallet(w))
			locked = append(locked, id)
		}
	}
	r.s.LockedWallets = append(r.s.LockedWallets, locked)
	return wallets, nil
}

func (r *storeWallets) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Balance, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(FailUpdateBalance); err != nil {
		return err
	}
	w, ok := r.s.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Amount = balance.Amount
	w.BalanceStatus = balance.Status
	w.UpdatedAt = updatedAt
	return nil
}

func (r *storeWallets) List(ctx context.Context, filter usecase.WalletFilter) ([]*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.Wallet
	for _, w := range r.s.wallets {
		if w.Deleted && !filter.IncludeDeleted {
			continue
		}
		if !filter.Category.Matches(w.Category) {
			continue
		}
		out = append(out, copyWallet(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})

	return paginate(out, filter.Limit, filter.Offset), nil
}

// Operations

type storeOperations struct{ s *Store }

func (r *storeOperations) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(FailOperationCreate); err != nil {
		return err
	}
	if _, exists := r.s.operations[op.ID]; exists {
		return fmt.Errorf("mocks: duplicate operation id %s", op.ID)
	}
	r.s.operations[op.ID] = copyOperationRow(op)
	return nil
}

func (r *storeOperations) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.operations[id]
	if !ok || op.Deleted {
		return nil, domain.ErrOperationNotFound
	}
	return r.s.hydrate(op), nil
}

func (r *storeOperations) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Operation, error) {
	return r.GetByID(ctx, id)
}

func (r *storeOperations) Update(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.operations[op.ID]
	if !ok || existing.Deleted {
		return domain.ErrOperationNotFound
	}
	r.s.operations[op.ID] = copyOperationRow(op)
	return nil
}

func (r *storeOperations) MarkDeleted(ctx context.Context, tx usecase.Transaction, id, updatedByID string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.operations[id]
	if !ok || op.Deleted {
		return domain.ErrOperationNotFound
	}
	op.Deleted = true
	op.UpdatedByID = updatedByID
	op.UpdatedAt = updatedAt
	return nil
}

// hydrate returns a copy of op with its type, active entries and their wallets. Caller holds mu.
func (s *Store) hydrate(op *domain.Operation) *domain.Operation {
	out := copyOperationRow(op)
	if t, ok := s.types[op.TypeID]; ok {
		tt := *t
		out.Type = &tt
	}
	for _, e := range s.entries {
		if e.OperationID != op.ID || e.Deleted {
			continue
		}
		entry := copyEntry(e)
		if w, ok := s.wallets[e.WalletID]; ok {
			entry.Wallet = copyWallet(w)
		}
		out.Entries = append(out.Entries, entry)
	}
	sortEntries(out.Entries)
	return out
}

// Entries

type storeEntries struct{ s *Store }

func (r *storeEntries) Create(ctx context.Context, tx usecase.Transaction, entry *domain.OperationEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(FailEntryCreate); err != nil {
		return err
	}
	if _, exists := r.s.entries[entry.ID]; exists {
		return fmt.Errorf("mocks: duplicate entry id %s", entry.ID)
	}
	r.s.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *storeEntries) Update(ctx context.Context, tx usecase.Transaction, entry *domain.OperationEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.entries[entry.ID]
	if !ok || existing.Deleted {
		return domain.ErrEntryNotFound
	}
	r.s.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *storeEntries) Retire(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok || e.Deleted {
		return domain.ErrEntryNotFound
	}
	e.Deleted = true
	e.UpdatedAt = updatedAt
	return nil
}

func (r *storeEntries) SumByDirection(ctx context.Context, tx usecase.Transaction, walletID string) (domain.DirectionSums, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sum(walletID, nil), nil
}

func (r *storeEntries) SumByDirectionAt(ctx context.Context, walletID string, at time.Time) (domain.DirectionSums, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sum(walletID, &at), nil
}

// sum aggregates counted entries of a wallet. Caller holds mu.
func (s *Store) sum(walletID string, at *time.Time) domain.DirectionSums {
	var sums domain.DirectionSums
	for _, e := range s.entries {
		if e.WalletID != walletID || e.Deleted {
			continue
		}
		op, ok := s.operations[e.OperationID]
		if !ok || op.Deleted {
			continue
		}
		if at != nil && op.CreatedAt.After(*at) {
			continue
		}
		switch e.Direction {
		case domain.DirectionCredit:
			sums.Credit += e.Amount
		case domain.DirectionDebit:
			sums.Debit += e.Amount
		}
	}
	return sums
}

func (r *storeEntries) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.OperationEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.OperationEntry
	for _, e := range r.s.entries {
		if e.WalletID != walletID || e.Deleted {
			continue
		}
		if op, ok := r.s.operations[e.OperationID]; !ok || op.Deleted {
			continue
		}
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return paginate(out, limit, offset), nil
}

// References

type storeReferences struct{ s *Store }

func (r *storeReferences) GetOperationType(ctx context.Context, id string) (*domain.OperationType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.types[id]
	if !ok || t.Deleted {
		return nil, domain.ErrOperationTypeNotFound
	}
	c := *t
	return &c, nil
}

func (r *storeReferences) GetCurrency(ctx context.Context, id string) (*domain.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.currencies[id]
	if !ok || c.Deleted {
		return nil, domain.ErrCurrencyNotFound
	}
	cc := *c
	return &cc, nil
}

// Reports

type storeReports struct{ s *Store }

func (r *storeReports) ListOperations(ctx context.Context, filter usecase.ReportFilter) ([]*domain.Operation, error) {
	return r.list(filter, false), nil
}

func (r *storeReports) ListConversionOperations(ctx context.Context, filter usecase.ReportFilter) ([]*domain.Operation, error) {
	return r.list(filter, true), nil
}

func (r *storeReports) list(filter usecase.ReportFilter, conversionOnly bool) []*domain.Operation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	types := make(map[string]struct{}, len(filter.TypeIDs))
	for _, id := range filter.TypeIDs {
		types[id] = struct{}{}
	}

	var out []*domain.Operation
	for _, op := range r.s.operations {
		if op.Deleted {
			continue
		}
		if conversionOnly && (op.ConversionGroupID == nil || *op.ConversionGroupID == "") {
			continue
		}
		if len(types) > 0 {
			if _, ok := types[op.TypeID]; !ok {
				continue
			}
		}
		if filter.From != nil && op.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && op.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, r.s.hydrate(op))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Outbox

type storeOutbox struct{ s *Store }

func (r *storeOutbox) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(FailOutboxCreate); err != nil {
		return err
	}
	c := *event
	r.s.outbox = append(r.s.outbox, &c)
	return nil
}

func (r *storeOutbox) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range r.s.outbox {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *storeOutbox) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return fmt.Errorf("mocks: outbox event %s not found", id)
}

func (r *storeOutbox) DeletePublished(ctx context.Context, before time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	for _, e := range r.s.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return nil
}

// Audit

type storeAudit struct{ s *Store }

func (r *storeAudit) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(FailAuditCreate); err != nil {
		return err
	}
	c := *log
	r.s.audit = append(r.s.audit, &c)
	return nil
}

func (r *storeAudit) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range r.s.audit {
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// helpers

func copyWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	if w.Currency != nil {
		cur := *w.Currency
		c.Currency = &cur
	}
	return &c
}

func copyOperationRow(op *domain.Operation) *domain.Operation {
	c := *op
	c.Type = nil
	c.Entries = nil
	if op.Description != nil {
		d := *op.Description
		c.Description = &d
	}
	if op.ConversionGroupID != nil {
		g := *op.ConversionGroupID
		c.ConversionGroupID = &g
	}
	if op.ApplicationID != nil {
		a := *op.ApplicationID
		c.ApplicationID = &a
	}
	return &c
}

func copyEntry(e *domain.OperationEntry) *domain.OperationEntry {
	c := *e
	c.Wallet = nil
	if e.Before != nil {
		b := *e.Before
		c.Before = &b
	}
	if e.After != nil {
		a := *e.After
		c.After = &a
	}
	return &c
}

func sortEntries(entries []*domain.OperationEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
