package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/walletledger/internal/adapter/http"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/walletledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/infrastructure/redis"
	"github.com/iho/walletledger/internal/infrastructure/spreadsheet"
	"github.com/iho/walletledger/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.SetGlobal(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	appLogger := logging.New(log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Str("path", cfg.MigrationsPath).Msg("migrations applied")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	checks := map[string]handler.CheckFunc{
		"postgres": pool.Ping,
	}

	// Redis is optional; without it caches and idempotency keys stay in process.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		redisClient      *goredis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		log.Info().Msg("redis not configured, using in-process cache")
		cache = memoryRepo.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
		idempotencyStore = memoryRepo.NewIdempotencyStore(time.Hour)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(cfg.TxMaxRetries),
		postgresRepo.WithRetryLogger(appLogger),
		postgresRepo.WithRetryMetrics(m),
	)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	reportRepo := postgresRepo.NewReportRepository(pool)
	referenceRepo, reportReferenceRepo := newReferenceRepositories(pool, cache, cfg.CacheTTL, appLogger)
	idGen := postgresRepo.NewULIDGenerator()

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	// Initialize use cases
	recalculator := usecase.NewBalanceRecalculator(walletRepo, entryRepo, m)
	operationUC := usecase.NewOperationUseCase(
		txManager, retrier, operationRepo, entryRepo, walletRepo, referenceRepo,
		outboxRepo, auditRepo, recalculator, idGen, appLogger, m,
	)
	adjustmentUC := usecase.NewAdjustmentUseCase(
		txManager, retrier, operationRepo, entryRepo, walletRepo, referenceRepo,
		outboxRepo, auditRepo, recalculator, idGen, appLogger, m,
	)
	walletUC := usecase.NewWalletUseCase(txManager, retrier, walletRepo, entryRepo, auditRepo, recalculator, idGen, appLogger)
	ledgerUC := usecase.NewLedgerUseCase(walletRepo, entryRepo, appLogger, m)
	reportUC := usecase.NewReportUseCase(reportRepo, walletRepo, reportReferenceRepo, spreadsheet.NewRenderer(), appLogger, m)

	// Outbox worker
	if cfg.OutboxEnabled {
		sink, closeSink, err := newEventSink(cfg, appLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event sink")
		}
		defer closeSink()

		worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  sink,
			Logger:     appLogger,
			Metrics:    m,
			Interval:   cfg.OutboxInterval,
		})
		go worker.Start(ctx)
		log.Info().Str("sink", cfg.EventSink).Msg("outbox publisher started")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
	go cleanupLimiters(ctx, rateLimiter)

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET")
		}
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("jwt authentication enabled")
	}

	httpLogger := log.Logger
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		OperationHandler: handler.NewOperationHandler(operationUC),
		WalletHandler:    handler.NewWalletHandler(walletUC, adjustmentUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo),
		HealthHandler:    handler.NewHealthHandler(checks),
		Logger:           &httpLogger,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimiter:      rateLimiter,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		TokenVerifier:    verifier,
	})

	// Create server
	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func serverAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}

// newReferenceRepositories returns the reference reader used by mutations and
// the cached one used by reports. Mutations read operation types straight from
// the database so a type deleted after it was cached can no longer be booked.
func newReferenceRepositories(db generated.DBTX, cache usecase.Cache, ttl time.Duration, appLogger *logging.Logger) (mutations, reports usecase.ReferenceRepository) {
	direct := postgresRepo.NewReferenceRepository(db)
	return direct, usecase.NewCachedReferenceRepository(direct, cache, ttl, appLogger)
}

// newEventSink builds the outbox sink selected by EVENT_SINK.
// The returned close func is always safe to call.
func newEventSink(cfg *config.Config, appLogger *logging.Logger) (eventpublisher.Publisher, func(), error) {
	switch cfg.EventSink {
	case "", config.EventSinkLog:
		return eventpublisher.NewLogPublisher(appLogger), func() {}, nil
	case config.EventSinkKafka:
		p, err := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, appLogger)
		if err != nil {
			return nil, func() {}, err
		}
		return p, p.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleTimeout); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiters cleaned up")
			}
		}
	}
}
