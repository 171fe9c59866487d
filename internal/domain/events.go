package domain

import "time"

// Event types
const (
	EventTypeOperationCreated = "operation.created"
	EventTypeOperationUpdated = "operation.updated"
	EventTypeOperationDeleted = "operation.deleted"
	EventTypeWalletAdjusted   = "wallet.adjusted"
)

// Aggregate types
const (
	AggregateTypeOperation = "operation"
	AggregateTypeWallet    = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletBalanceChange describes one wallet touched by a mutation.
type WalletBalanceChange struct {
	WalletID string `json:"wallet_id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

// OperationChangedEvent payload, shared by created/updated/deleted events
type OperationChangedEvent struct {
	OperationID       string                `json:"operation_id"`
	TypeID            string                `json:"type_id"`
	ConversionGroupID string                `json:"conversion_group_id,omitempty"`
	ActorID           string                `json:"actor_id"`
	Wallets           []WalletBalanceChange `json:"wallets"`
	EventAt           string                `json:"event_at"`
}

// WalletAdjustedEvent payload
type WalletAdjustedEvent struct {
	WalletID         string `json:"wallet_id"`
	OperationID      string `json:"operation_id,omitempty"`
	PreviousAmount   int64  `json:"previous_amount"`
	NewAmount        int64  `json:"new_amount"`
	AdjustmentAmount int64  `json:"adjustment_amount"`
	Direction        string `json:"direction,omitempty"`
	ActorID          string `json:"actor_id"`
}
