package usecase

import (
	"context"
	"errors"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
)

// runWithRetry runs fn once per attempt. Each attempt must open its own transaction.
func runWithRetry(ctx context.Context, retrier Retrier, fn func() error) error {
	if retrier == nil {
		return fn()
	}
	return retrier.Retry(ctx, fn)
}

// errorKind classifies err for metric labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal"
	}
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(logging.RequestIDKey).(string)
	return id
}
