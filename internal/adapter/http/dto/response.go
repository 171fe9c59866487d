package dto

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CurrencyID    string    `json:"currency_id"`
	CurrencyCode  string    `json:"currency_code,omitempty"`
	Category      string    `json:"category"`
	Amount        int64     `json:"amount"`
	BalanceStatus string    `json:"balance_status"`
	Deleted       bool      `json:"deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:            w.ID,
		Name:          w.Name,
		CurrencyID:    w.CurrencyID,
		CurrencyCode:  w.CurrencyCode(),
		Category:      string(w.Category),
		Amount:        w.Amount,
		BalanceStatus: string(w.BalanceStatus),
		Deleted:       w.Deleted,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// EntryResponse represents an operation entry in API responses.
type EntryResponse struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	WalletID    string    `json:"wallet_id"`
	WalletName  string    `json:"wallet_name,omitempty"`
	Direction   string    `json:"direction"`
	Amount      int64     `json:"amount"`
	Before      *int64    `json:"before_amount"`
	After       *int64    `json:"after_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.OperationEntry) *EntryResponse {
	resp := &EntryResponse{
		ID:          e.ID,
		OperationID: e.OperationID,
		WalletID:    e.WalletID,
		Direction:   string(e.Direction),
		Amount:      e.Amount,
		Before:      e.Before,
		After:       e.After,
		CreatedAt:   e.CreatedAt,
	}
	if e.Wallet != nil {
		resp.WalletName = e.Wallet.Name
	}
	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.OperationEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// OperationResponse represents an operation with its active entries.
type OperationResponse struct {
	ID                string           `json:"id"`
	TypeID            string           `json:"type_id"`
	TypeName          string           `json:"type_name,omitempty"`
	Description       *string          `json:"description"`
	ConversionGroupID *string          `json:"conversion_group_id"`
	ApplicationID     *int64           `json:"application_id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	UserID            string           `json:"user_id"`
	UpdatedByID       string           `json:"updated_by_id"`
	Entries           []*EntryResponse `json:"entries"`
}

// OperationFromDomain converts a domain operation to response.
func OperationFromDomain(op *domain.Operation) *OperationResponse {
	resp := &OperationResponse{
		ID:                op.ID,
		TypeID:            op.TypeID,
		Description:       op.Description,
		ConversionGroupID: op.ConversionGroupID,
		ApplicationID:     op.ApplicationID,
		CreatedAt:         op.CreatedAt,
		UpdatedAt:         op.UpdatedAt,
		UserID:            op.UserID,
		UpdatedByID:       op.UpdatedByID,
		Entries:           EntriesFromDomain(op.ActiveEntries()),
	}
	if op.Type != nil {
		resp.TypeName = op.Type.Name
	}
	return resp
}

// BalanceResponse is a wallet balance at a point in time.
type BalanceResponse struct {
	WalletID string    `json:"wallet_id"`
	At       time.Time `json:"at"`
	Amount   int64     `json:"amount"`
	Status   string    `json:"status"`
}

// BalanceFromDomain converts a derived balance to response.
func BalanceFromDomain(walletID string, at time.Time, b domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		WalletID: walletID,
		At:       at,
		Amount:   b.Amount,
		Status:   string(b.Status),
	}
}

// AdjustmentResponse reports the outcome of a balance adjustment.
type AdjustmentResponse struct {
	Message          string             `json:"message"`
	PreviousAmount   int64              `json:"previous_amount"`
	NewAmount        int64              `json:"new_amount"`
	AdjustmentAmount int64              `json:"adjustment_amount"`
	Operation        *OperationResponse `json:"operation,omitempty"`
}

// AdjustmentFromResult converts an adjustment result to response.
func AdjustmentFromResult(r *usecase.AdjustmentResult) *AdjustmentResponse {
	resp := &AdjustmentResponse{
		Message:          r.Message,
		PreviousAmount:   r.PreviousAmount,
		NewAmount:        r.NewAmount,
		AdjustmentAmount: r.AdjustmentAmount,
	}
	if r.Operation != nil {
		resp.Operation = OperationFromDomain(r.Operation)
	}
	return resp
}

// ReconciliationResponse compares cached and derived balances of a wallet.
type ReconciliationResponse struct {
	WalletID         string    `json:"wallet_id"`
	RecordedAmount   int64     `json:"recorded_amount"`
	RecordedStatus   string    `json:"recorded_status"`
	CalculatedAmount int64     `json:"calculated_amount"`
	CalculatedStatus string    `json:"calculated_status"`
	Difference       int64     `json:"difference"`
	IsReconciled     bool      `json:"is_reconciled"`
	LastChecked      time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:         r.WalletID,
		RecordedAmount:   r.RecordedAmount,
		RecordedStatus:   string(r.RecordedStatus),
		CalculatedAmount: r.CalculatedAmount,
		CalculatedStatus: string(r.CalculatedStatus),
		Difference:       r.Difference,
		IsReconciled:     r.IsReconciled,
		LastChecked:      r.LastChecked,
	}
}

// ConsistencyResponse summarizes a ledger-wide balance check.
type ConsistencyResponse struct {
	TotalWallets      int                       `json:"total_wallets"`
	ReconciledWallets int                       `json:"reconciled_wallets"`
	Consistent        bool                      `json:"consistent"`
	CheckedAt         time.Time                 `json:"checked_at"`
	Discrepancies     []*ReconciliationResponse `json:"discrepancies"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		TotalWallets:      r.TotalWallets,
		ReconciledWallets: r.ReconciledWallets,
		Consistent:        r.Consistent,
		CheckedAt:         r.CheckedAt,
		Discrepancies:     make([]*ReconciliationResponse, len(r.Discrepancies)),
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromResult(d)
	}
	return resp
}

// AuditLogResponse represents an audit record.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit records to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
