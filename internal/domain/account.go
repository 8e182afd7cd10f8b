package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PartyType distinguishes receivable accounts (customers) from payable ones (suppliers).
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
)

// IsValid reports whether p is a known party type.
func (p PartyType) IsValid() bool {
	return p == PartyCustomer || p == PartySupplier
}

func (p PartyType) String() string {
	return string(p)
}

// ParsePartyType parses a party type, ignoring case and surrounding whitespace.
func ParsePartyType(s string) (PartyType, error) {
	p := PartyType(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPartyType, s)
	}
	return p, nil
}

// Account is a customer or supplier with a denormalized running balance.
//
// Balance always equals the balance of the chronologically last ledger
// entry posted for the account. Only the balance poster changes it.
type Account struct {
	ID        string
	Name      string
	PartyType PartyType
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the balance after posting debit and credit.
func (a *Account) Apply(debit, credit decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(debit).Sub(credit)
}
