package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

// StatementService builds reconciled statements.
type StatementService interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (*usecase.Statement, error)
}

// AccountGetter resolves an account's party type for account-scoped routes.
type AccountGetter interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

// StatementHandler serves account and party statements.
type StatementHandler struct {
	statements StatementService
	accounts   AccountGetter
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statements StatementService, accounts AccountGetter) *StatementHandler {
	return &StatementHandler{statements: statements, accounts: accounts}
}

// Account returns the statement of a single account.
func (h *StatementHandler) Account(w http.ResponseWriter, r *http.Request) {
	query, err := parseStatementQuery(r)
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	h.serve(w, r, query.ToUseCaseInput(domain.ForAccount(account.PartyType, account.ID)))
}

// Party returns the combined statement of every account of a party type.
func (h *StatementHandler) Party(w http.ResponseWriter, r *http.Request) {
	party, err := domain.ParsePartyType(chi.URLParam(r, "party_type"))
	if err != nil {
		writeDomainError(w, "invalid party type", err)
		return
	}

	query, err := parseStatementQuery(r)
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}

	h.serve(w, r, query.ToUseCaseInput(domain.AllOf(party)))
}

func (h *StatementHandler) serve(w http.ResponseWriter, r *http.Request, input usecase.ReconcileInput) {
	stmt, err := h.statements.Reconcile(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to build statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromUseCase(stmt))
}
