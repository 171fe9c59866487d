package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	OperationHandler *handler.OperationHandler
	WalletHandler    *handler.WalletHandler
	LedgerHandler    *handler.LedgerHandler
	ReportHandler    *handler.ReportHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler

	// Optional
	Logger           *zerolog.Logger
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	// TokenVerifier enables JWT auth on /api/v1 when set.
	TokenVerifier middleware.TokenVerifier
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	appLogger := logging.Nop()
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
		appLogger = logging.New(*cfg.Logger)
	}
	r.Use(middleware.Recovery(appLogger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	mutating := passThrough
	adminOnly := passThrough
	if cfg.TokenVerifier != nil {
		mutating = middleware.RequireRole(domain.RoleOperator)
		adminOnly = middleware.RequireRole(domain.RoleAdmin)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/operations", func(r chi.Router) {
			r.With(mutating).Post("/", cfg.OperationHandler.Create)
			r.Get("/{id}", cfg.OperationHandler.Get)
			r.With(mutating).Put("/{id}", cfg.OperationHandler.Update)
			r.With(mutating).Delete("/{id}", cfg.OperationHandler.Delete)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Get("/{id}/entries", cfg.WalletHandler.ListEntries)
			r.Get("/{id}/balance/history", cfg.WalletHandler.GetHistoricalBalance)
			r.Get("/{id}/reconciliation", cfg.WalletHandler.Reconcile)
			r.With(mutating).Post("/{id}/adjustments", cfg.WalletHandler.Adjust)
			r.With(mutating).Post("/{id}/recalculate", cfg.WalletHandler.Recalculate)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Get("/reports/{kind}", cfg.ReportHandler.Download)

		if cfg.AuditHandler != nil {
			r.With(adminOnly).Get("/audit-logs", cfg.AuditHandler.List)
		}
	})

	return r
}

func passThrough(next http.Handler) http.Handler { return next }
