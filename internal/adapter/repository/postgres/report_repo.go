package postgres

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// ReportRepository implements usecase.ReportRepository.
type ReportRepository struct {
	queries *generated.Queries
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db generated.DBTX) *ReportRepository {
	return &ReportRepository{queries: generated.New(db)}
}

// ListOperations returns filtered operations with their active entries.
func (r *ReportRepository) ListOperations(ctx context.Context, filter usecase.ReportFilter) ([]*domain.Operation, error) {
	return r.list(ctx, filter, false)
}

// ListConversionOperations returns filtered operations that belong to a conversion group.
func (r *ReportRepository) ListConversionOperations(ctx context.Context, filter usecase.ReportFilter) ([]*domain.Operation, error) {
	return r.list(ctx, filter, true)
}

func (r *ReportRepository) list(ctx context.Context, filter usecase.ReportFilter, conversionOnly bool) ([]*domain.Operation, error) {
	typeIDs := filter.TypeIDs
	if typeIDs == nil {
		typeIDs = []string{}
	}

	rows, err := r.queries.ListReportOperations(ctx, generated.ListReportOperationsParams{
		TypeIds:        typeIDs,
		FromAt:         optionalTimestamptz(filter.From),
		ToAt:           optionalTimestamptz(filter.To),
		ConversionOnly: conversionOnly,
	})
	if err != nil {
		return nil, err
	}

	ops := make([]*domain.Operation, 0, len(rows))
	for _, row := range rows {
		op := rowToOperation(generated.Operation{
			ID:                row.ID,
			TypeID:            row.TypeID,
			Description:       row.Description,
			ConversionGroupID: row.ConversionGroupID,
			ApplicationID:     row.ApplicationID,
			UserID:            row.UserID,
			UpdatedByID:       row.UpdatedByID,
			Deleted:           row.Deleted,
			CreatedAt:         row.CreatedAt,
			UpdatedAt:         row.UpdatedAt,
		})
		if row.TypeName.Valid {
			op.Type = &domain.OperationType{ID: row.TypeID, Name: row.TypeName.String, Deleted: row.TypeDeleted.Bool}
		}
		ops = append(ops, op)
	}

	if err := loadEntries(ctx, r.queries, ops); err != nil {
		return nil, err
	}

	return ops, nil
}
