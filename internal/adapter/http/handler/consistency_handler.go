package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

// ConsistencyService checks stored balances against replayed statements.
type ConsistencyService interface {
	CheckAccount(ctx context.Context, accountID string) (*usecase.DriftReport, error)
	CheckAllAccounts(ctx context.Context, party domain.PartyType) (*usecase.ReconciliationReport, error)
}

// ConsistencyHandler serves balance drift checks.
type ConsistencyHandler struct {
	checker ConsistencyService
}

// NewConsistencyHandler creates a new ConsistencyHandler.
func NewConsistencyHandler(checker ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{checker: checker}
}

// Account checks one account.
func (h *ConsistencyHandler) Account(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.CheckAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to check account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DriftReportFromUseCase(report))
}

// Party checks every account of a party type.
func (h *ConsistencyHandler) Party(w http.ResponseWriter, r *http.Request) {
	party, err := domain.ParsePartyType(chi.URLParam(r, "party_type"))
	if err != nil {
		writeDomainError(w, "invalid party type", err)
		return
	}

	report, err := h.checker.CheckAllAccounts(r.Context(), party)
	if err != nil {
		writeDomainError(w, "failed to check accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
