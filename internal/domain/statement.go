package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// Date truncates t to a calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateRange is an inclusive range of calendar dates. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether the calendar date of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Date(t)
	if r.From != nil && d.Before(Date(*r.From)) {
		return false
	}
	if r.To != nil && d.After(Date(*r.To)) {
		return false
	}
	return true
}

// IsOpen reports whether the range has no bounds.
func (r DateRange) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Validate rejects ranges whose start lies after their end.
func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && Date(*r.From).After(Date(*r.To)) {
		return ErrInvalidDateRange
	}
	return nil
}

// AccountSelector picks one account, or every account of a party type when
// AccountID is empty.
type AccountSelector struct {
	PartyType PartyType
	AccountID string
}

// ForAccount selects a single account.
func ForAccount(party PartyType, accountID string) AccountSelector {
	return AccountSelector{PartyType: party, AccountID: accountID}
}

// AllOf selects every account of a party type.
func AllOf(party PartyType) AccountSelector {
	return AccountSelector{PartyType: party}
}

// All reports whether the selector spans every account of its party type.
func (s AccountSelector) All() bool {
	return s.AccountID == ""
}

// StatementSource records which store a statement was built from.
type StatementSource string

const (
	SourceJournal StatementSource = "journal"
	SourceDerived StatementSource = "derived"
)

// Totals aggregates a statement.
type Totals struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Outstanding decimal.Decimal
	Count       int
}

// ComputeTotals sums debits and credits of entries. Outstanding is
// debit minus credit for a customer ledger (receivable) and credit minus
// debit for a supplier ledger (payable).
func ComputeTotals(entries []*Entry, party PartyType) Totals {
	totals := Totals{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Outstanding: decimal.Zero,
		Count:       len(entries),
	}

	for _, e := range entries {
		totals.TotalDebit = totals.TotalDebit.Add(e.Debit)
		totals.TotalCredit = totals.TotalCredit.Add(e.Credit)
	}

	switch party {
	case PartySupplier:
		totals.Outstanding = totals.TotalCredit.Sub(totals.TotalDebit)
	default:
		totals.Outstanding = totals.TotalDebit.Sub(totals.TotalCredit)
	}

	return totals
}

// ParseAmount parses a stored amount. Missing or malformed values count as zero.
func ParseAmount(s *string) decimal.Decimal {
	if s == nil || *s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
