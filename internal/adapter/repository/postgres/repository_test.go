package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

var (
	walletColumns = []string{"id", "name", "currency_id", "category", "amount", "balance_status", "deleted", "created_at", "updated_at"}
	entryColumns  = []string{"id", "operation_id", "wallet_id", "direction", "amount", "before_amount", "after_amount", "deleted", "created_at", "updated_at",
		"wallet_name", "wallet_currency_id", "wallet_category", "wallet_amount", "wallet_balance_status", "wallet_deleted"}
	operationColumns = []string{"id", "type_id", "description", "conversion_group_id", "application_id", "user_id", "updated_by_id", "deleted", "created_at", "updated_at",
		"type_name", "type_deleted"}
)

var fixedTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestWalletRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets").
		WithArgs("w1").
		WillReturnRows(pgxmock.NewRows(walletColumns).
			AddRow("w1", "Alpha", "usd", "client", int64(-250), "negative", false, ts(fixedTime), ts(fixedTime)))

	wallet, err := NewWalletRepository(pool).GetByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", wallet.Name)
	assert.Equal(t, domain.WalletCategoryClient, wallet.Category)
	assert.Equal(t, domain.Balance{Amount: -250, Status: domain.BalanceStatusNegative}, wallet.Balance())
	assert.Equal(t, fixedTime, wallet.CreatedAt)
	assertExpectations(t, pool)
}

func TestWalletRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := NewWalletRepository(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.True(t, domain.IsNotFound(err))
}

func TestWalletRepositoryLocksInSortedOrder(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery("FOR UPDATE").
		WithArgs([]string{"a", "b", "c"}).
		WillReturnRows(pgxmock.NewRows(walletColumns).
			AddRow("a", "A", "usd", "none", int64(0), "neutral", false, ts(fixedTime), ts(fixedTime)).
			AddRow("c", "C", "usd", "none", int64(5), "positive", false, ts(fixedTime), ts(fixedTime)))

	wallets, err := NewWalletRepository(pool).GetByIDsForUpdate(context.Background(), tx, []string{"c", "a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "a", wallets[0].ID)
	assert.Equal(t, "c", wallets[1].ID)
	assertExpectations(t, pool)
}

func TestWalletRepositoryLocksDeletedWallets(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery(`WHERE id = ANY\(\$1::text\[\]\)\s+ORDER BY id\s+FOR UPDATE`).
		WithArgs([]string{"a", "d"}).
		WillReturnRows(pgxmock.NewRows(walletColumns).
			AddRow("a", "A", "usd", "none", int64(0), "neutral", false, ts(fixedTime), ts(fixedTime)).
			AddRow("d", "D", "usd", "none", int64(-7), "negative", true, ts(fixedTime), ts(fixedTime)))

	wallets, err := NewWalletRepository(pool).GetByIDsForUpdate(context.Background(), tx, []string{"d", "a"})
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.False(t, wallets[0].Deleted)
	assert.Equal(t, "d", wallets[1].ID)
	assert.True(t, wallets[1].Deleted)
	assertExpectations(t, pool)
}

func TestWalletRepositoryLockNothing(t *testing.T) {
	pool := newMockPool(t)

	wallets, err := NewWalletRepository(pool).GetByIDsForUpdate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, wallets)
	assertExpectations(t, pool)
}

func TestWalletRepositoryUpdateBalance(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE wallets").
		WithArgs("w1", int64(370), "positive", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("UPDATE wallets").
		WithArgs("ghost", int64(0), "neutral", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewWalletRepository(pool)
	require.NoError(t, repo.UpdateBalance(context.Background(), tx, "w1", domain.DeriveBalance(domain.DirectionSums{Credit: 500, Debit: 130}), fixedTime))

	err := repo.UpdateBalance(context.Background(), tx, "ghost", domain.DeriveBalance(domain.DirectionSums{}), fixedTime)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assertExpectations(t, pool)
}

func TestWalletRepositoryListDefaults(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets").
		WithArgs(false, "all", int32(domain.DefaultPageSize), int32(0)).
		WillReturnRows(pgxmock.NewRows(walletColumns))

	wallets, err := NewWalletRepository(pool).List(context.Background(), usecase.WalletFilter{})
	require.NoError(t, err)
	assert.Empty(t, wallets)
	assertExpectations(t, pool)
}

func TestEntryRepositorySumByDirectionOutsideTx(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("GROUP BY e.direction").
		WithArgs("w1").
		WillReturnRows(pgxmock.NewRows([]string{"direction", "total"}).
			AddRow("credit", int64(500)).
			AddRow("debit", int64(130)))

	sums, err := NewEntryRepository(pool).SumByDirection(context.Background(), nil, "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionSums{Credit: 500, Debit: 130}, sums)
	assert.Equal(t, int64(370), domain.DeriveBalance(sums).Amount)
	assertExpectations(t, pool)
}

func TestEntryRepositorySumByDirectionAt(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("o.created_at <=").
		WithArgs("w1", ts(fixedTime)).
		WillReturnRows(pgxmock.NewRows([]string{"direction", "total"}).AddRow("debit", int64(40)))

	sums, err := NewEntryRepository(pool).SumByDirectionAt(context.Background(), "w1", fixedTime)
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionSums{Debit: 40}, sums)
	assertExpectations(t, pool)
}

func TestEntryRepositoryRetireMissing(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectExec("UPDATE operation_entries").
		WithArgs("e1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewEntryRepository(pool).Retire(context.Background(), tx, "e1", fixedTime)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assertExpectations(t, pool)
}

func TestEntryRepositoryCreateStoresSnapshots(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	before, after := int64(0), int64(500)
	pool.ExpectExec("INSERT INTO operation_entries").
		WithArgs("e1", "op1", "w1", "credit", int64(500),
			pgtype.Int8{Int64: 0, Valid: true}, pgtype.Int8{Int64: 500, Valid: true},
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewEntryRepository(pool).Create(context.Background(), tx, &domain.OperationEntry{
		ID:          "e1",
		OperationID: "op1",
		WalletID:    "w1",
		Direction:   domain.DirectionCredit,
		Amount:      500,
		Before:      &before,
		After:       &after,
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestOperationRepositoryGetByIDHydrates(t *testing.T) {
	pool := newMockPool(t)
	group := pgtype.Text{String: "g1", Valid: true}

	pool.ExpectQuery("FROM operations o").
		WithArgs("op1").
		WillReturnRows(pgxmock.NewRows(operationColumns).
			AddRow("op1", "conversion", pgtype.Text{}, group, pgtype.Int8{Int64: 42, Valid: true}, "u1", "u1", false,
				ts(fixedTime), ts(fixedTime), pgtype.Text{String: "Конвертация", Valid: true}, pgtype.Bool{Bool: false, Valid: true}))
	pool.ExpectQuery("FROM operation_entries e").
		WithArgs([]string{"op1"}).
		WillReturnRows(pgxmock.NewRows(entryColumns).
			AddRow("e1", "op1", "w1", "debit", int64(400), pgtype.Int8{}, pgtype.Int8{}, false, ts(fixedTime), ts(fixedTime),
				"Alpha", "rub", "internal", int64(-400), "negative", false).
			AddRow("e2", "op1", "w2", "credit", int64(100), pgtype.Int8{}, pgtype.Int8{}, false, ts(fixedTime), ts(fixedTime),
				"Bravo", "usd", "client", int64(100), "positive", true))

	op, err := NewOperationRepository(pool).GetByID(context.Background(), "op1")
	require.NoError(t, err)
	require.NotNil(t, op.Type)
	assert.Equal(t, "Конвертация", op.Type.Name)
	require.NotNil(t, op.ConversionGroupID)
	assert.Equal(t, "g1", *op.ConversionGroupID)
	assert.Nil(t, op.Description)
	require.NotNil(t, op.ApplicationID)
	assert.Equal(t, int64(42), *op.ApplicationID)
	require.Len(t, op.Entries, 2)
	assert.Equal(t, domain.DirectionDebit, op.Entries[0].Direction)
	assert.Equal(t, "Alpha", op.Entries[0].Wallet.Name)
	assert.True(t, op.Entries[1].Wallet.Deleted)
	assert.Equal(t, []string{"w1", "w2"}, op.WalletIDs())
	assertExpectations(t, pool)
}

func TestOperationRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM operations o").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := NewOperationRepository(pool).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestOperationRepositoryMarkDeletedTwice(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectExec("SET deleted = TRUE").
		WithArgs("op1", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewOperationRepository(pool).MarkDeleted(context.Background(), tx, "op1", "u1", fixedTime)
	assert.ErrorIs(t, err, domain.ErrOperationNotFound)
	assertExpectations(t, pool)
}

func TestReportRepositoryConversionFilter(t *testing.T) {
	pool := newMockPool(t)
	from := fixedTime.Add(-time.Hour)

	pool.ExpectQuery("FROM operations o").
		WithArgs([]string{}, ts(from), pgtype.Timestamptz{}, true).
		WillReturnRows(pgxmock.NewRows(operationColumns))

	ops, err := NewReportRepository(pool).ListConversionOperations(context.Background(), usecase.ReportFilter{From: &from})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assertExpectations(t, pool)
}

func TestReferenceRepositoryNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM operation_types").WithArgs("x").WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery("FROM currencies").WithArgs("y").WillReturnError(pgx.ErrNoRows)

	repo := NewReferenceRepository(pool)
	_, err := repo.GetOperationType(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrOperationTypeNotFound)

	_, err = repo.GetCurrency(context.Background(), "y")
	assert.ErrorIs(t, err, domain.ErrCurrencyNotFound)
	assertExpectations(t, pool)
}

func TestAuditRepositoryCreateTx(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectExec("INSERT INTO audit_logs").
		WithArgs("a1", "u1", "wallet.adjust", "wallet", "w1", pgtype.Text{String: "req-1", Valid: true},
			[]byte(`{"amount":10}`), pgxmock.AnyArg(), "success", pgtype.Text{}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewAuditRepository(pool).CreateTx(context.Background(), tx, &domain.AuditLog{
		ID:           "a1",
		UserID:       "u1",
		Action:       string(domain.AuditActionWalletAdjust),
		ResourceType: domain.AuditResourceWallet,
		ResourceID:   "w1",
		RequestID:    "req-1",
		BeforeState:  domain.JSON{"amount": 10},
		AfterState:   domain.JSON{"amount": 25},
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    fixedTime,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM outbox_events").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("ev1", "op1", "operation", "operation.created", []byte(`{"operation_id":"op1"}`), ts(fixedTime), pgtype.Timestamptz{}, false))

	events, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "op1", events[0].Payload["operation_id"])
	assert.Nil(t, events[0].PublishedAt)
	assertExpectations(t, pool)
}

func TestRepositoryPropagatesDriverErrors(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("connection reset")
	pool.ExpectQuery("GROUP BY e.direction").WithArgs("w1").WillReturnError(boom)

	_, err := NewEntryRepository(pool).SumByDirection(context.Background(), nil, "w1")
	assert.ErrorIs(t, err, boom)
}

func TestULIDGeneratorProducesSortableIDs(t *testing.T) {
	gen := NewULIDGenerator()
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
