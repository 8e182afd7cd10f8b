package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	PartyType string          `json:"party_type"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		PartyType: a.PartyType.String(),
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a paginated list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse is one statement line.
type EntryResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name,omitempty"`
	Kind        string          `json:"kind"`
	ReferenceNo string          `json:"reference_no"`
	Description string          `json:"description"`
	TxDate      string          `json:"tx_date"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		AccountName: e.AccountName,
		Kind:        string(e.Kind),
		ReferenceNo: e.ReferenceNo,
		Description: e.Description,
		TxDate:      e.TxDate.Format(domain.DateLayout),
		Debit:       e.Debit,
		Credit:      e.Credit,
		Balance:     e.Balance,
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TotalsResponse aggregates a statement.
type TotalsResponse struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Count       int             `json:"count"`
}

// StatementResponse is a reconciled statement, newest entry first.
type StatementResponse struct {
	PartyType        string           `json:"party_type"`
	AccountID        string           `json:"account_id,omitempty"`
	Source           string           `json:"source"`
	OpeningBalance   *decimal.Decimal `json:"opening_balance,omitempty"`
	ClosingBalance   *decimal.Decimal `json:"closing_balance,omitempty"`
	Totals           TotalsResponse   `json:"totals"`
	StoredMismatches int              `json:"stored_mismatches"`
	Entries          []*EntryResponse `json:"entries"`
}

// StatementFromUseCase converts a statement to response. Opening and
// closing balances are only reported for single-account statements.
func StatementFromUseCase(s *usecase.Statement) *StatementResponse {
	resp := &StatementResponse{
		PartyType: s.PartyType.String(),
		AccountID: s.AccountID,
		Source:    string(s.Source),
		Totals: TotalsResponse{
			TotalDebit:  s.Totals.TotalDebit,
			TotalCredit: s.Totals.TotalCredit,
			Outstanding: s.Totals.Outstanding,
			Count:       s.Totals.Count,
		},
		StoredMismatches: s.StoredMismatches,
		Entries:          EntriesFromDomain(s.Entries),
	}

	if s.AccountID != "" {
		opening, closing := s.OpeningBalance, s.ClosingBalance
		resp.OpeningBalance = &opening
		resp.ClosingBalance = &closing
	}

	return resp
}

// DriftReportResponse compares a stored balance with its replayed value.
type DriftReportResponse struct {
	AccountID       string          `json:"account_id"`
	PartyType       string          `json:"party_type"`
	Source          string          `json:"source"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	EntryMismatches int             `json:"entry_mismatches"`
	IsReconciled    bool            `json:"is_reconciled"`
	LastChecked     time.Time       `json:"last_checked"`
}

// DriftReportFromUseCase converts a drift report to response.
func DriftReportFromUseCase(r *usecase.DriftReport) *DriftReportResponse {
	return &DriftReportResponse{
		AccountID:       r.AccountID,
		PartyType:       r.PartyType.String(),
		Source:          string(r.Source),
		RecordedBalance: r.RecordedBalance,
		ReplayedBalance: r.ReplayedBalance,
		Difference:      r.Difference,
		EntryMismatches: r.EntryMismatches,
		IsReconciled:    r.IsReconciled,
		LastChecked:     r.LastChecked,
	}
}

// ReconciliationReportResponse summarises a party-wide drift check.
type ReconciliationReportResponse struct {
	PartyType          string                 `json:"party_type"`
	TotalAccounts      int                    `json:"total_accounts"`
	ReconciledAccounts int                    `json:"reconciled_accounts"`
	Discrepancies      []*DriftReportResponse `json:"discrepancies"`
	CheckedAt          time.Time              `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a party report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*DriftReportResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = DriftReportFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		PartyType:          r.PartyType.String(),
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// SourceTransactionResponse represents a recorded business transaction.
type SourceTransactionResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Kind            string          `json:"kind"`
	ReferenceNo     string          `json:"reference_no"`
	Description     string          `json:"description"`
	TxDate          string          `json:"tx_date"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	FinalBalance    decimal.Decimal `json:"final_balance"`
}

// TransactionResponse is a recorded transaction and its ledger entry.
type TransactionResponse struct {
	Transaction *SourceTransactionResponse `json:"transaction"`
	Entry       *EntryResponse             `json:"entry,omitempty"`
}

// TransactionFromUseCase converts a record result to response.
func TransactionFromUseCase(r *usecase.RecordResult) *TransactionResponse {
	resp := &TransactionResponse{}

	if src := r.Transaction; src != nil {
		resp.Transaction = &SourceTransactionResponse{
			ID:              src.ID,
			AccountID:       src.AccountID,
			Kind:            string(src.Kind),
			ReferenceNo:     src.ReferenceNo,
			Description:     src.Description,
			TxDate:          src.TxDate.Format(domain.DateLayout),
			Amount:          src.Amount,
			PreviousBalance: src.PreviousBalance,
			FinalBalance:    src.FinalBalance,
		}
	}

	if r.Entry != nil {
		resp.Entry = EntryFromDomain(r.Entry)
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}
