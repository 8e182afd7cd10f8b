package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind enumerates the business events that produce ledger entries.
type EntryKind string

const (
	KindOpening      EntryKind = "opening"
	KindSaleOrder    EntryKind = "sale_order"
	KindSalesInvoice EntryKind = "sales_invoice"
	KindPurchase     EntryKind = "purchase"
	KindPayment      EntryKind = "payment"
)

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case KindOpening, KindSaleOrder, KindSalesInvoice, KindPurchase, KindPayment:
		return true
	}
	return false
}

// ParseEntryKind parses an entry kind.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Entry is one posted line of an account statement.
//
// TxDate carries no time component; CreatedAt is only used to order entries
// that share a date. Balance is the running total after this entry.
type Entry struct {
	TxDate      time.Time
	CreatedAt   time.Time
	ID          string
	AccountID   string
	AccountName string
	Kind        EntryKind
	ReferenceNo string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
}

// Net returns debit minus credit.
func (e *Entry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Before reports whether e replays before o: by date, then by creation time.
// The entry ID breaks exact ties so ordering never depends on fetch order.
func (e *Entry) Before(o *Entry) bool {
	if !e.TxDate.Equal(o.TxDate) {
		return e.TxDate.Before(o.TxDate)
	}
	if !e.CreatedAt.Equal(o.CreatedAt) {
		return e.CreatedAt.Before(o.CreatedAt)
	}
	return e.ID < o.ID
}

// ValidateSides checks that amounts are non-negative and exactly one side is set.
func ValidateSides(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return ErrInvalidAmount
	}
	if debit.IsZero() == credit.IsZero() {
		return ErrOneSidedEntry
	}
	return nil
}
