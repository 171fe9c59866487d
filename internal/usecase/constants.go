package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking wallet rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// ReferenceCacheTTL bounds how stale a cached operation type or currency may be
	ReferenceCacheTTL = 5 * time.Minute

	// ReportTimeout bounds a single report generation
	ReportTimeout = 2 * time.Minute
)
