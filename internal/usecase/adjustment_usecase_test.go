package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestAdjustBalance(t *testing.T) {
	tests := []struct {
		name          string
		ledger        []domain.EntryInput
		target        int64
		wantDirection domain.Direction
		wantAmount    int64
		wantAction    string
	}{
		{
			name:          "credit up to target",
			ledger:        []domain.EntryInput{credit(walletA, 130)},
			target:        500,
			wantDirection: domain.DirectionCredit,
			wantAmount:    370,
			wantAction:    "пополнение",
		},
		{
			name:          "debit down to target",
			ledger:        []domain.EntryInput{credit(walletA, 130)},
			target:        30,
			wantDirection: domain.DirectionDebit,
			wantAmount:    100,
			wantAction:    "списание",
		},
		{
			name:          "negative balance to zero",
			ledger:        []domain.EntryInput{debit(walletA, 45)},
			target:        0,
			wantDirection: domain.DirectionCredit,
			wantAmount:    45,
			wantAction:    "пополнение",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			f.create(t, baseTime, tt.ledger...)
			opsBefore := f.store.OperationCount()

			result, err := f.adjustments.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{
				WalletID:     walletA,
				TypeID:       typeAdjustment,
				TargetAmount: tt.target,
				Description:  ptr("сверка"),
			})
			require.NoError(t, err)

			require.NotNil(t, result.Operation)
			require.Len(t, result.Operation.Entries, 1)
			entry := result.Operation.Entries[0]
			assert.Equal(t, tt.wantDirection, entry.Direction)
			assert.Equal(t, tt.wantAmount, entry.Amount)
			assert.Equal(t, tt.wantAmount, result.AdjustmentAmount)
			assert.Equal(t, tt.target, result.NewAmount)
			assert.Equal(t, tt.target, *entry.After)
			assert.Equal(t, result.PreviousAmount, *entry.Before)
			assert.Contains(t, result.Message, tt.wantAction)
			assert.Equal(t, opsBefore+1, f.store.OperationCount())

			f.requireBalance(t, walletA, tt.target, domain.StatusOf(tt.target))

			events := f.store.OutboxEvents()
			last := events[len(events)-1]
			assert.Equal(t, domain.EventTypeWalletAdjusted, last.EventType)
			assert.Equal(t, walletA, last.AggregateID)
		})
	}
}

func TestAdjustBalanceNoop(t *testing.T) {
	f := newLedgerFixture(t)
	f.create(t, baseTime, credit(walletA, 250))
	// The cached balance is stale; the ledger already matches the target.
	f.store.SetCachedBalance(walletA, 0, domain.BalanceStatusNeutral)
	opsBefore := f.store.OperationCount()

	result, err := f.adjustments.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{
		WalletID:     walletA,
		TypeID:       typeAdjustment,
		TargetAmount: 250,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Operation)
	assert.Zero(t, result.AdjustmentAmount)
	assert.Equal(t, int64(250), result.PreviousAmount)
	assert.Equal(t, int64(250), result.NewAmount)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, opsBefore, f.store.OperationCount())

	f.requireBalance(t, walletA, 250, domain.BalanceStatusPositive)
}

func TestAdjustBalanceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.AdjustBalanceInput
		want  error
	}{
		{
			name:  "negative target",
			input: usecase.AdjustBalanceInput{WalletID: walletA, TypeID: typeAdjustment, TargetAmount: -1},
			want:  domain.ErrNegativeTarget,
		},
		{
			name:  "missing wallet id",
			input: usecase.AdjustBalanceInput{TypeID: typeAdjustment, TargetAmount: 1},
			want:  domain.ErrMissingWallet,
		},
		{
			name:  "unknown wallet",
			input: usecase.AdjustBalanceInput{WalletID: "wallet-missing", TypeID: typeAdjustment, TargetAmount: 1},
			want:  domain.ErrWalletNotFound,
		},
		{
			name:  "deleted type",
			input: usecase.AdjustBalanceInput{WalletID: walletA, TypeID: "type-archived", TargetAmount: 1},
			want:  domain.ErrOperationTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)

			result, err := f.adjustments.AdjustBalance(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, result)
			assert.Zero(t, f.store.OperationCount())
		})
	}
}

func TestAdjustBalanceRejectsTypeDeletedAfterUse(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.adjustments.AdjustBalance(ctx, usecase.AdjustBalanceInput{WalletID: walletA, TypeID: typeAdjustment, TargetAmount: 100})
	require.NoError(t, err)

	f.store.AddOperationType(&domain.OperationType{ID: typeAdjustment, Name: "Корректировка", Deleted: true})

	result, err := f.adjustments.AdjustBalance(ctx, usecase.AdjustBalanceInput{WalletID: walletA, TypeID: typeAdjustment, TargetAmount: 200})
	require.ErrorIs(t, err, domain.ErrOperationTypeNotFound)
	assert.Nil(t, result)
	assert.Equal(t, 1, f.store.OperationCount())
	f.requireBalance(t, walletA, 100, domain.BalanceStatusPositive)

	_, err = f.operations.CreateOperation(ctx, usecase.CreateOperationInput{
		TypeID:    typeAdjustment,
		CreatedAt: baseTime,
		Entries:   []domain.EntryInput{credit(walletA, 1)},
	})
	require.ErrorIs(t, err, domain.ErrOperationTypeNotFound)
}
