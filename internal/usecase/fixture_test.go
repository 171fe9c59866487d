package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

const (
	typeTransfer   = "type-transfer"
	typeAdjustment = "type-adjustment"
	typeConversion = "type-conversion"

	walletA = "wallet-a"
	walletB = "wallet-b"
	walletC = "wallet-c"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	store        *mocks.Store
	ids          *mocks.MockIDGenerator
	metrics      *metrics.Metrics
	recalculator *usecase.BalanceRecalculator
	operations   *usecase.OperationUseCase
	adjustments  *usecase.AdjustmentUseCase
	wallets      *usecase.WalletUseCase
	ledger       *usecase.LedgerUseCase
	reports      *usecase.ReportUseCase
}

type fixtureOptions struct {
	retrier  usecase.Retrier
	renderer usecase.ReportRenderer
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	return newLedgerFixtureWith(t, fixtureOptions{})
}

func newLedgerFixtureWith(t *testing.T, opts fixtureOptions) *ledgerFixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddCurrency(&domain.Currency{ID: "cur-usd", Code: "USD", Name: "US Dollar"})
	store.AddCurrency(&domain.Currency{ID: "cur-rub", Code: "RUB", Name: "Российский рубль"})
	store.AddOperationType(&domain.OperationType{ID: typeTransfer, Name: "Перевод"})
	store.AddOperationType(&domain.OperationType{ID: typeAdjustment, Name: "Корректировка"})
	store.AddOperationType(&domain.OperationType{ID: typeConversion, Name: "Конвертация"})
	store.AddOperationType(&domain.OperationType{ID: "type-archived", Name: "Архив", Deleted: true})
	store.AddWallet(&domain.Wallet{ID: walletA, Name: "Alpha", CurrencyID: "cur-usd", Category: domain.WalletCategoryInternal})
	store.AddWallet(&domain.Wallet{ID: walletB, Name: "Bravo", CurrencyID: "cur-rub", Category: domain.WalletCategoryClient})
	store.AddWallet(&domain.Wallet{ID: walletC, Name: "Charlie", CurrencyID: "cur-usd", Category: domain.WalletCategoryNone})

	ids := mocks.NewMockIDGenerator()
	m := metrics.New(prometheus.NewRegistry())
	recalculator := usecase.NewBalanceRecalculator(store.Wallets(), store.Entries(), m)

	return &ledgerFixture{
		store:        store,
		ids:          ids,
		metrics:      m,
		recalculator: recalculator,
		operations: usecase.NewOperationUseCase(
			store.TxManager(), opts.retrier, store.Operations(), store.Entries(), store.Wallets(),
			store.References(), store.Outbox(), store.Audit(), recalculator, ids, nil, m,
		),
		adjustments: usecase.NewAdjustmentUseCase(
			store.TxManager(), opts.retrier, store.Operations(), store.Entries(), store.Wallets(),
			store.References(), store.Outbox(), store.Audit(), recalculator, ids, nil, m,
		),
		wallets: usecase.NewWalletUseCase(
			store.TxManager(), opts.retrier, store.Wallets(), store.Entries(), store.Audit(), recalculator, ids, nil,
		),
		ledger:  usecase.NewLedgerUseCase(store.Wallets(), store.Entries(), nil, m),
		reports: usecase.NewReportUseCase(store.Reports(), store.Wallets(), store.References(), opts.renderer, nil, m),
	}
}

func (f *ledgerFixture) create(t *testing.T, at time.Time, entries ...domain.EntryInput) *domain.Operation {
	t.Helper()

	op, err := f.operations.CreateOperation(context.Background(), usecase.CreateOperationInput{
		TypeID:    typeTransfer,
		CreatedAt: at,
		Entries:   entries,
	})
	require.NoError(t, err)

	return op
}

func (f *ledgerFixture) requireBalance(t *testing.T, walletID string, amount int64, status domain.BalanceStatus) {
	t.Helper()

	w := f.store.Wallet(walletID)
	require.NotNil(t, w)
	require.Equal(t, amount, w.Amount, "cached amount of %s", walletID)
	require.Equal(t, status, w.BalanceStatus, "balance status of %s", walletID)

	sums, err := f.store.Entries().SumByDirection(context.Background(), nil, walletID)
	require.NoError(t, err)
	require.Equal(t, domain.DeriveBalance(sums).Amount, w.Amount, "cached amount of %s drifted from ledger", walletID)
}

func credit(walletID string, amount int64) domain.EntryInput {
	return domain.EntryInput{WalletID: walletID, Direction: domain.DirectionCredit, Amount: amount}
}

func debit(walletID string, amount int64) domain.EntryInput {
	return domain.EntryInput{WalletID: walletID, Direction: domain.DirectionDebit, Amount: amount}
}

func ptr[T any](v T) *T {
	return &v
}
