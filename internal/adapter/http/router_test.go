package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/partyledger/internal/adapter/http/middleware"
	"github.com/iho/partyledger/internal/infrastructure/metrics"
	"github.com/iho/partyledger/internal/usecase"
	"github.com/iho/partyledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(mocks.NewStore()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	m := metrics.New()
	router := NewRouter(newRouterConfig(mocks.NewStore(), func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1, m.RateLimitHits)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig(mocks.NewStore(), func(cfg *RouterConfig) {
		cfg.Metrics = metrics.New()
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `partyledger_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(mocks.NewStore()))

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
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/statement",
		"GET /api/v1/accounts/{id}/consistency",
		"GET /api/v1/parties/{party_type}/statement",
		"GET /api/v1/parties/{party_type}/consistency",
		"POST /api/v1/transactions/",
		"PUT /api/v1/transactions/{kind}/{reference}",
		"DELETE /api/v1/transactions/{kind}/{reference}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

// TestNewRouter_LedgerFlow drives an account from creation to statement
// through the full middleware stack.
func TestNewRouter_LedgerFlow(t *testing.T) {
	store := mocks.NewStore()
	idem := mocks.NewMockIdempotencyStore()
	router := NewRouter(newRouterConfig(store, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = idem
	}))

	do := func(method, path, body, key string) *httptest.ResponseRecorder {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set(apimiddleware.IdempotencyKeyHeader, key)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/accounts", `{"name":"Supplies Co","party_type":"supplier","opening_balance":"300","opening_date":"2024-01-01"}`, "acc-key")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var acc dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(-300)))

	replay := do(http.MethodPost, "/api/v1/accounts", `{"name":"Supplies Co","party_type":"supplier"}`, "acc-key")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, rec.Body.String(), replay.Body.String())

	rec = do(http.MethodPost, "/api/v1/transactions", `{"account_id":"`+acc.ID+`","kind":"purchase","date":"2024-01-05","amount":"200","reference_no":"PO-1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/api/v1/transactions", `{"account_id":"`+acc.ID+`","kind":"payment","date":"2024-01-03","amount":"100","reference_no":"PAY-1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/v1/accounts/"+acc.ID+"/statement", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stmt dto.StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stmt))
	require.Len(t, stmt.Entries, 3)
	// Newest first: purchase (-400), backdated payment (-200), opening (-300).
	assert.Equal(t, "PO-1", stmt.Entries[0].ReferenceNo)
	assert.True(t, stmt.Entries[0].Balance.Equal(decimal.NewFromInt(-400)))
	assert.True(t, stmt.Entries[1].Balance.Equal(decimal.NewFromInt(-200)))
	assert.True(t, stmt.Entries[2].Balance.Equal(decimal.NewFromInt(-300)))
	assert.True(t, stmt.Totals.Outstanding.Equal(decimal.NewFromInt(400)))

	rec = do(http.MethodGet, "/api/v1/parties/supplier/consistency", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report dto.ReconciliationReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalAccounts)
	assert.Equal(t, 1, report.ReconciledAccounts)

	rec = do(http.MethodDelete, "/api/v1/transactions/purchase/PO-1?account_id="+acc.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/v1/accounts/"+acc.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(-200)))
}

func newRouterConfig(store *mocks.Store, opts ...func(*RouterConfig)) RouterConfig {
	idGen := mocks.NewMockIDGenerator()
	txMgr := mocks.NewMockTransactionManager(store)
	accountRepo := mocks.NewMemAccountRepository(store)
	entryRepo := mocks.NewMemLedgerEntryRepository(store)
	sourceRepo := mocks.NewMemSourceRepository(store)
	outbox := mocks.NewMemOutboxRepository(store)

	poster := usecase.NewPostingUseCase(txMgr, accountRepo, entryRepo, outbox, &mocks.MockRetrier{Attempts: 3}, idGen, nil, zerolog.Nop()).
		WithClock(&mocks.MockClock{Time: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), Step: time.Second})
	transactions := usecase.NewTransactionUseCase(poster, sourceRepo, idGen)
	accounts := usecase.NewAccountUseCase(txMgr, accountRepo, outbox, transactions, idGen)
	reconciler := usecase.NewReconciliationUseCase(accountRepo, entryRepo, sourceRepo, nil, zerolog.Nop())

	cfg := RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accounts),
		StatementHandler:   handler.NewStatementHandler(reconciler, accounts),
		ConsistencyHandler: handler.NewConsistencyHandler(reconciler),
		TransactionHandler: handler.NewTransactionHandler(transactions),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
