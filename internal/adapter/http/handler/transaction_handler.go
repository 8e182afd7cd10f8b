package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/partyledger/internal/adapter/http/dto"
	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

// TransactionService records, amends and voids business transactions.
type TransactionService interface {
	RecordTransaction(ctx context.Context, input usecase.RecordTransactionInput) (*usecase.RecordResult, error)
	AmendTransaction(ctx context.Context, input usecase.AmendTransactionInput) (*usecase.RecordResult, error)
	VoidTransaction(ctx context.Context, input usecase.VoidTransactionInput) (*usecase.RecordResult, error)
}

// TransactionHandler handles transaction HTTP requests.
type TransactionHandler struct {
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create records a transaction and posts its ledger entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	result, err := h.transactions.RecordTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to record transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromUseCase(result))
}

// Update amends the date, amount or description of a transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntryKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, "invalid kind", err)
		return
	}

	var req dto.AmendTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(kind, chi.URLParam(r, "reference"))
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	result, err := h.transactions.AmendTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to amend transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromUseCase(result))
}

// Delete voids a transaction and removes its ledger entry.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntryKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, "invalid kind", err)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id", "")
		return
	}

	result, err := h.transactions.VoidTransaction(r.Context(), usecase.VoidTransactionInput{
		AccountID:   accountID,
		Kind:        kind,
		ReferenceNo: chi.URLParam(r, "reference"),
	})
	if err != nil {
		writeDomainError(w, "failed to void transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromUseCase(result))
}
