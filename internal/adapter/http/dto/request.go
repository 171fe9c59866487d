package dto

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// EntryRequest is one credit or debit line. Amounts are minor units.
type EntryRequest struct {
	ID        string `json:"id,omitempty"`
	WalletID  string `json:"wallet_id"`
	Direction string `json:"direction"`
	Amount    int64  `json:"amount"`
}

func entriesToInput(entries []EntryRequest) []domain.EntryInput {
	if entries == nil {
		return nil
	}
	out := make([]domain.EntryInput, len(entries))
	for i, e := range entries {
		out[i] = domain.EntryInput{
			ID:        e.ID,
			WalletID:  e.WalletID,
			Direction: domain.Direction(e.Direction),
			Amount:    e.Amount,
		}
	}
	return out
}

// CreateOperationRequest represents a request to create an operation.
type CreateOperationRequest struct {
	TypeID            string         `json:"type_id"`
	Description       *string        `json:"description,omitempty"`
	ConversionGroupID *string        `json:"conversion_group_id,omitempty"`
	ApplicationID     *int64         `json:"application_id,omitempty"`
	CreatedAt         *time.Time     `json:"created_at,omitempty"`
	Entries           []EntryRequest `json:"entries"`
}

// ToUseCaseInput converts to use case input.
// A missing created_at defaults to now.
func (r *CreateOperationRequest) ToUseCaseInput(now time.Time) usecase.CreateOperationInput {
	createdAt := now.UTC()
	if r.CreatedAt != nil {
		createdAt = r.CreatedAt.UTC()
	}

	return usecase.CreateOperationInput{
		TypeID:            r.TypeID,
		Description:       r.Description,
		ConversionGroupID: r.ConversionGroupID,
		ApplicationID:     r.ApplicationID,
		CreatedAt:         createdAt,
		Entries:           entriesToInput(r.Entries),
	}
}

// UpdateOperationRequest represents a partial update. Omitted fields are kept;
// a present entries list replaces the operation's entries.
type UpdateOperationRequest struct {
	TypeID            *string        `json:"type_id,omitempty"`
	Description       *string        `json:"description,omitempty"`
	ConversionGroupID *string        `json:"conversion_group_id,omitempty"`
	ApplicationID     *int64         `json:"application_id,omitempty"`
	Entries           []EntryRequest `json:"entries,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateOperationRequest) ToUseCaseInput(id string) usecase.UpdateOperationInput {
	return usecase.UpdateOperationInput{
		ID:                id,
		TypeID:            r.TypeID,
		Description:       r.Description,
		ConversionGroupID: r.ConversionGroupID,
		ApplicationID:     r.ApplicationID,
		Entries:           entriesToInput(r.Entries),
	}
}

// AdjustBalanceRequest sets a wallet to a target balance.
type AdjustBalanceRequest struct {
	TypeID       string  `json:"type_id"`
	TargetAmount int64   `json:"target_amount"`
	Description  *string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustBalanceRequest) ToUseCaseInput(walletID string) usecase.AdjustBalanceInput {
	return usecase.AdjustBalanceInput{
		WalletID:     walletID,
		TypeID:       r.TypeID,
		TargetAmount: r.TargetAmount,
		Description:  r.Description,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
