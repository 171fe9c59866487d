package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
	if rec.Header().Get(apimiddleware.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(0.001, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"type_id":"type-deposit","entries":[{"wallet_id":"w-1","direction":"credit","amount":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !store.checkCalled || !store.updateCalled {
		t.Fatalf("expected idempotency store to be used, got %+v", store)
	}
}

func TestNewRouter_AuthProtectsMutations(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = manager
	}))

	viewer, err := manager.Generate(&domain.User{ID: "v-1", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	send := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(`{"type_id":"t","target_amount":1}`))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodGet, "/api/v1/wallets", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := send(http.MethodGet, "/api/v1/wallets", viewer); code != http.StatusOK {
		t.Fatalf("expected viewer to read, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/wallets/w-1/adjustments", viewer); code != http.StatusForbidden {
		t.Fatalf("expected viewer to be forbidden from adjusting, got %d", code)
	}
	if code := send(http.MethodGet, "/health", ""); code != http.StatusOK {
		t.Fatalf("expected health to stay public, got %d", code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `walletledger_http_requests_total{method="GET",path="/api/v1/wallets`) {
		t.Fatalf("expected wallet request to be counted, got:\n%s", rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/operations/",
		"GET /api/v1/operations/{id}",
		"PUT /api/v1/operations/{id}",
		"DELETE /api/v1/operations/{id}",
		"GET /api/v1/wallets/",
		"GET /api/v1/wallets/{id}",
		"GET /api/v1/wallets/{id}/entries",
		"GET /api/v1/wallets/{id}/balance/history",
		"GET /api/v1/wallets/{id}/reconciliation",
		"POST /api/v1/wallets/{id}/adjustments",
		"POST /api/v1/wallets/{id}/recalculate",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/reports/{kind}",
		"GET /api/v1/audit-logs",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:    handler.NewHealthHandler(nil),
		OperationHandler: handler.NewOperationHandler(stubOperationService{}),
		WalletHandler:    handler.NewWalletHandler(stubWalletService{}, stubAdjustmentService{}),
		LedgerHandler:    handler.NewLedgerHandler(stubLedgerService{}),
		ReportHandler:    handler.NewReportHandler(stubReportService{}),
		AuditHandler:     handler.NewAuditHandler(stubAuditLister{}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubOperationService struct{}

func (stubOperationService) CreateOperation(ctx context.Context, input usecase.CreateOperationInput) (*domain.Operation, error) {
	return &domain.Operation{ID: "op", TypeID: input.TypeID}, nil
}

func (stubOperationService) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return &domain.Operation{ID: id}, nil
}

func (stubOperationService) UpdateOperation(ctx context.Context, input usecase.UpdateOperationInput) (*domain.Operation, error) {
	return &domain.Operation{ID: input.ID}, nil
}

func (stubOperationService) DeleteOperation(ctx context.Context, id string) error {
	return nil
}

type stubWalletService struct{}

func (stubWalletService) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return &domain.Wallet{ID: id}, nil
}

func (stubWalletService) ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error) {
	return []*domain.Wallet{}, nil
}

func (stubWalletService) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.OperationEntry, error) {
	return []*domain.OperationEntry{}, nil
}

func (stubWalletService) GetHistoricalBalance(ctx context.Context, walletID string, at time.Time) (domain.Balance, error) {
	return domain.Balance{Status: domain.BalanceStatusNeutral}, nil
}

func (stubWalletService) Recalculate(ctx context.Context, walletID string) (*domain.Wallet, error) {
	return &domain.Wallet{ID: walletID}, nil
}

func (stubWalletService) Reconcile(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error) {
	return &usecase.ReconciliationResult{WalletID: walletID, IsReconciled: true}, nil
}

type stubAdjustmentService struct{}

func (stubAdjustmentService) AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*usecase.AdjustmentResult, error) {
	return &usecase.AdjustmentResult{Message: "noop"}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return &usecase.ConsistencyReport{Consistent: true}, nil
}

type stubReportService struct{}

func (stubReportService) GeneralReport(ctx context.Context, input usecase.ReportInput) (*domain.ReportFile, error) {
	return &domain.ReportFile{Filename: "general.xlsx", ContentType: domain.XLSXContentType}, nil
}

func (stubReportService) ConversionReport(ctx context.Context, input usecase.ReportInput) (*domain.ReportFile, error) {
	return &domain.ReportFile{Filename: "conversion.xlsx", ContentType: domain.XLSXContentType}, nil
}

func (stubReportService) ClosingReport(ctx context.Context, category string) (*domain.ReportFile, error) {
	return &domain.ReportFile{Filename: "closing.xlsx", ContentType: domain.XLSXContentType}, nil
}

type stubAuditLister struct{}

func (stubAuditLister) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

type stubIdempotencyStore struct {
	checkCalled  bool
	updateCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateCalled = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
