package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
	"github.com/iho/partyledger/internal/usecase/mocks"
)

type consistencyStub struct {
	accountFn func(ctx context.Context, id string) (*usecase.DriftReport, error)
	partyFn   func(ctx context.Context, party domain.PartyType) (*usecase.ReconciliationReport, error)
}

func (s *consistencyStub) CheckAccount(ctx context.Context, id string) (*usecase.DriftReport, error) {
	return s.accountFn(ctx, id)
}

func (s *consistencyStub) CheckAllAccounts(ctx context.Context, party domain.PartyType) (*usecase.ReconciliationReport, error) {
	return s.partyFn(ctx, party)
}

func TestConsistencyHandler_AccountReconciled(t *testing.T) {
	l := newMemLedger(mocks.NewStore())
	acc := l.seedCustomer(t)
	h := NewConsistencyHandler(l.reconciler)

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/accounts/"+acc.ID+"/consistency", nil), "id", acc.ID)
	rec := httptest.NewRecorder()

	h.Account(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.DriftReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsReconciled || !resp.ReplayedBalance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestConsistencyHandler_AccountErrors(t *testing.T) {
	h := NewConsistencyHandler(&consistencyStub{
		accountFn: func(ctx context.Context, id string) (*usecase.DriftReport, error) {
			if id == "missing" {
				return nil, domain.ErrAccountNotFound
			}
			return nil, errors.New("database down")
		},
	})

	tests := []struct {
		id         string
		wantStatus int
	}{
		{"missing", http.StatusNotFound},
		{"acc-1", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/accounts/"+tt.id+"/consistency", nil), "id", tt.id)
			rec := httptest.NewRecorder()

			h.Account(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestConsistencyHandler_Party(t *testing.T) {
	var captured domain.PartyType
	h := NewConsistencyHandler(&consistencyStub{
		partyFn: func(ctx context.Context, party domain.PartyType) (*usecase.ReconciliationReport, error) {
			captured = party
			return &usecase.ReconciliationReport{
				PartyType:          party,
				TotalAccounts:      2,
				ReconciledAccounts: 1,
				Discrepancies: []*usecase.DriftReport{{
					AccountID:  "acc-2",
					PartyType:  party,
					Difference: decimal.NewFromInt(5),
				}},
			}, nil
		},
	})

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/supplier/consistency", nil), "party_type", "supplier")
	rec := httptest.NewRecorder()

	h.Party(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured != domain.PartySupplier {
		t.Fatalf("expected supplier check, got %q", captured)
	}

	var resp dto.ReconciliationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalAccounts != 2 || len(resp.Discrepancies) != 1 {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestConsistencyHandler_PartyInvalid(t *testing.T) {
	h := NewConsistencyHandler(&consistencyStub{})

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/partner/consistency", nil), "party_type", "partner")
	rec := httptest.NewRecorder()

	h.Party(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
