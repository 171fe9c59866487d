package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

// ReferenceRepository implements usecase.ReferenceRepository.
type ReferenceRepository struct {
	queries *generated.Queries
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db generated.DBTX) *ReferenceRepository {
	return &ReferenceRepository{queries: generated.New(db)}
}

// GetOperationType returns a non-deleted operation type.
func (r *ReferenceRepository) GetOperationType(ctx context.Context, id string) (*domain.OperationType, error) {
	row, err := r.queries.GetOperationTypeByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationTypeNotFound
		}

		return nil, err
	}

	return &domain.OperationType{ID: row.ID, Name: row.Name, Deleted: row.Deleted}, nil
}

// GetCurrency returns a non-deleted currency.
func (r *ReferenceRepository) GetCurrency(ctx context.Context, id string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrencyByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	return &domain.Currency{ID: row.ID, Code: row.Code, Name: row.Name, Deleted: row.Deleted}, nil
}
