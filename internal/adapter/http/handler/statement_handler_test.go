package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
	"github.com/iho/partyledger/internal/usecase/mocks"
)

// memLedger wires the real use cases over the in-memory store.
type memLedger struct {
	store        *mocks.Store
	accounts     *usecase.AccountUseCase
	transactions *usecase.TransactionUseCase
	reconciler   *usecase.ReconciliationUseCase
}

func newMemLedger(store *mocks.Store) *memLedger {
	idGen := mocks.NewMockIDGenerator()
	txMgr := mocks.NewMockTransactionManager(store)
	accountRepo := mocks.NewMemAccountRepository(store)
	entryRepo := mocks.NewMemLedgerEntryRepository(store)
	sourceRepo := mocks.NewMemSourceRepository(store)
	outbox := mocks.NewMemOutboxRepository(store)

	poster := usecase.NewPostingUseCase(txMgr, accountRepo, entryRepo, outbox, &mocks.MockRetrier{Attempts: 3}, idGen, nil, zerolog.Nop()).
		WithClock(&mocks.MockClock{Time: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), Step: time.Second})
	transactions := usecase.NewTransactionUseCase(poster, sourceRepo, idGen)

	return &memLedger{
		store:        store,
		accounts:     usecase.NewAccountUseCase(txMgr, accountRepo, outbox, transactions, idGen),
		transactions: transactions,
		reconciler:   usecase.NewReconciliationUseCase(accountRepo, entryRepo, sourceRepo, nil, zerolog.Nop()),
	}
}

func (l *memLedger) seedCustomer(t *testing.T) *domain.Account {
	t.Helper()
	ctx := context.Background()

	acc, err := l.accounts.CreateAccount(ctx, usecase.CreateAccountInput{Name: "Acme", PartyType: domain.PartyCustomer})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	records := []usecase.RecordTransactionInput{
		{AccountID: acc.ID, Kind: domain.KindSalesInvoice, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), ReferenceNo: "INV-1"},
		{AccountID: acc.ID, Kind: domain.KindPayment, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(40), ReferenceNo: "PAY-1"},
		{AccountID: acc.ID, Kind: domain.KindSalesInvoice, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(60), ReferenceNo: "INV-2"},
	}
	for _, in := range records {
		if _, err := l.transactions.RecordTransaction(ctx, in); err != nil {
			t.Fatalf("record %s: %v", in.ReferenceNo, err)
		}
	}

	return acc
}

func TestStatementHandler_Account(t *testing.T) {
	l := newMemLedger(mocks.NewStore())
	acc := l.seedCustomer(t)
	handler := NewStatementHandler(l.reconciler, l.accounts)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+acc.ID+"/statement?from=2024-01-02", nil)
	req = setChiURLParams(req, "id", acc.ID)
	rec := httptest.NewRecorder()

	handler.Account(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Source != string(domain.SourceJournal) {
		t.Fatalf("expected journal source, got %s", resp.Source)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(resp.Entries))
	}
	// Newest first, balances replayed over the whole history.
	if resp.Entries[0].ReferenceNo != "INV-2" || !resp.Entries[0].Balance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected first entry %+v", resp.Entries[0])
	}
	if !resp.Entries[1].Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected second entry %+v", resp.Entries[1])
	}
	if resp.OpeningBalance == nil || !resp.OpeningBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected opening balance 100, got %v", resp.OpeningBalance)
	}
}

func TestStatementHandler_AccountFallsBackWithoutJournal(t *testing.T) {
	l := newMemLedger(mocks.NewStore().WithoutJournal())
	acc := l.seedCustomer(t)
	handler := NewStatementHandler(l.reconciler, l.accounts)

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/accounts/"+acc.ID+"/statement", nil), "id", acc.ID)
	rec := httptest.NewRecorder()

	handler.Account(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Source != string(domain.SourceDerived) || len(resp.Entries) != 3 {
		t.Fatalf("unexpected derived statement %+v", resp)
	}
	if !resp.Totals.Outstanding.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected outstanding 120, got %s", resp.Totals.Outstanding)
	}
}

func TestStatementHandler_AccountNotFound(t *testing.T) {
	l := newMemLedger(mocks.NewStore())
	handler := NewStatementHandler(l.reconciler, l.accounts)

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/accounts/missing/statement", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Account(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatementHandler_Party(t *testing.T) {
	l := newMemLedger(mocks.NewStore())
	l.seedCustomer(t)
	handler := NewStatementHandler(l.reconciler, l.accounts)

	tests := []struct {
		name       string
		party      string
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "all customers", party: "customer", wantStatus: http.StatusOK, wantCount: 3},
		{name: "suppliers are empty", party: "supplier", wantStatus: http.StatusOK, wantCount: 0},
		{name: "unknown party", party: "partner", wantStatus: http.StatusBadRequest},
		{name: "inverted range", party: "customer", query: "?from=2024-02-01&to=2024-01-01", wantStatus: http.StatusBadRequest},
		{name: "malformed date", party: "customer", query: "?to=yesterday", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/parties/"+tt.party+"/statement"+tt.query, nil)
			req = setChiURLParams(req, "party_type", tt.party)
			rec := httptest.NewRecorder()

			handler.Party(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp dto.StatementResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Entries) != tt.wantCount {
				t.Fatalf("expected %d entries, got %d", tt.wantCount, len(resp.Entries))
			}
			if resp.OpeningBalance != nil {
				t.Fatalf("expected no opening balance on party statement")
			}
		})
	}
}
