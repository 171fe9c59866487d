package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func int64Ptr(v int64) *int64 { return &v }

func TestWalletFromDomain(t *testing.T) {
	now := time.Now()
	wallet := &domain.Wallet{
		ID:            "w-1",
		Name:          "Касса",
		CurrencyID:    "rub",
		Currency:      &domain.Currency{ID: "rub", Code: "RUB"},
		Category:      domain.WalletCategoryInternal,
		Amount:        -250,
		BalanceStatus: domain.BalanceStatusNegative,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	resp := WalletFromDomain(wallet)
	if resp.ID != "w-1" || resp.CurrencyCode != "RUB" || resp.Amount != -250 || resp.BalanceStatus != "negative" {
		t.Fatalf("unexpected wallet response: %+v", resp)
	}

	list := WalletsFromDomain([]*domain.Wallet{wallet})
	if len(list) != 1 || list[0].ID != wallet.ID {
		t.Fatalf("WalletsFromDomain returned %+v", list)
	}
}

func TestOperationFromDomainOmitsRetiredEntries(t *testing.T) {
	op := &domain.Operation{
		ID:     "op-1",
		TypeID: "type-transfer",
		Type:   &domain.OperationType{ID: "type-transfer", Name: "Перевод"},
		Entries: []*domain.OperationEntry{
			{ID: "e-1", WalletID: "w-1", Direction: domain.DirectionDebit, Amount: 10, Before: int64Ptr(100), After: int64Ptr(90),
				Wallet: &domain.Wallet{ID: "w-1", Name: "Касса"}},
			{ID: "e-2", WalletID: "w-2", Direction: domain.DirectionCredit, Amount: 10, Deleted: true},
		},
	}

	resp := OperationFromDomain(op)
	if resp.TypeName != "Перевод" {
		t.Fatalf("expected type name, got %q", resp.TypeName)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].ID != "e-1" || resp.Entries[0].WalletName != "Касса" {
		t.Fatalf("unexpected entries: %+v", resp.Entries)
	}
	if *resp.Entries[0].Before != 100 || *resp.Entries[0].After != 90 {
		t.Fatalf("expected snapshots to be kept, got %+v", resp.Entries[0])
	}
}

func TestEntryResponseSerializesMissingSnapshotsAsNull(t *testing.T) {
	body, err := json.Marshal(EntryFromDomain(&domain.OperationEntry{ID: "e-1", Direction: domain.DirectionCredit, Amount: 5}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v, ok := decoded["before_amount"]; !ok || v != nil {
		t.Fatalf("expected before_amount to be null, got %v", decoded)
	}
}

func TestAdjustmentFromResult(t *testing.T) {
	noop := AdjustmentFromResult(&usecase.AdjustmentResult{Message: "ok", PreviousAmount: 5, NewAmount: 5})
	if noop.Operation != nil || noop.NewAmount != 5 {
		t.Fatalf("unexpected no-op response: %+v", noop)
	}

	applied := AdjustmentFromResult(&usecase.AdjustmentResult{
		Operation:        &domain.Operation{ID: "op-1"},
		PreviousAmount:   5,
		NewAmount:        20,
		AdjustmentAmount: 15,
	})
	if applied.Operation == nil || applied.Operation.ID != "op-1" || applied.AdjustmentAmount != 15 {
		t.Fatalf("unexpected adjustment response: %+v", applied)
	}
}

func TestConsistencyFromReport(t *testing.T) {
	report := &usecase.ConsistencyReport{
		TotalWallets:      2,
		ReconciledWallets: 1,
		Discrepancies: []*usecase.ReconciliationResult{
			{WalletID: "w-2", RecordedAmount: 10, CalculatedAmount: 4, Difference: 6,
				RecordedStatus: domain.BalanceStatusPositive, CalculatedStatus: domain.BalanceStatusPositive},
		},
	}

	resp := ConsistencyFromReport(report)
	if resp.Consistent || len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != 6 {
		t.Fatalf("unexpected consistency response: %+v", resp)
	}
}

func TestAuditLogsFromDomain(t *testing.T) {
	logs := AuditLogsFromDomain([]*domain.AuditLog{{
		ID:          "a-1",
		Action:      string(domain.AuditActionWalletAdjust),
		BeforeState: domain.JSON{"amount": 1},
		Status:      "success",
	}})
	if len(logs) != 1 || logs[0].Action != "wallet.adjust" || logs[0].BeforeState["amount"] != 1 {
		t.Fatalf("unexpected audit response: %+v", logs)
	}
}
