package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceTransaction is a raw business record (invoice, purchase, payment)
// as kept by the transaction tables. PreviousBalance and FinalBalance are
// the account balance snapshots taken when the record was posted.
type SourceTransaction struct {
	TxDate          time.Time
	CreatedAt       time.Time
	ID              string
	AccountID       string
	AccountName     string
	Kind            EntryKind
	ReferenceNo     string
	Description     string
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	FinalBalance    decimal.Decimal
}

// Sides maps a business amount onto the debit and credit columns of a
// party's ledger.
//
//	customer: opening, sale order, sales invoice -> debit; payment in  -> credit
//	supplier: opening, purchase                  -> credit; payment out -> debit
//
// Only an opening amount may be negative; it flips to the other column.
func Sides(party PartyType, kind EntryKind, amount decimal.Decimal) (debit, credit decimal.Decimal, err error) {
	debit, credit = decimal.Zero, decimal.Zero

	if amount.IsNegative() && kind != KindOpening {
		return debit, credit, ErrInvalidAmount
	}

	var charge bool
	switch party {
	case PartyCustomer:
		switch kind {
		case KindOpening, KindSaleOrder, KindSalesInvoice:
			charge = true
		case KindPayment:
			charge = false
		default:
			return debit, credit, ErrKindNotAllowed
		}
	case PartySupplier:
		switch kind {
		case KindOpening, KindPurchase:
			charge = true
		case KindPayment:
			charge = false
		default:
			return debit, credit, ErrKindNotAllowed
		}
	default:
		return debit, credit, ErrInvalidPartyType
	}

	if amount.IsNegative() {
		charge = !charge
		amount = amount.Neg()
	}

	// A charge raises what the customer owes (debit) or what is owed to the
	// supplier (credit).
	if charge == (party == PartyCustomer) {
		return amount, decimal.Zero, nil
	}
	return decimal.Zero, amount, nil
}

// ChargeKinds lists the kinds that make up the invoice-side source of a party.
func ChargeKinds(party PartyType) []EntryKind {
	if party == PartySupplier {
		return []EntryKind{KindOpening, KindPurchase}
	}
	return []EntryKind{KindOpening, KindSaleOrder, KindSalesInvoice}
}

// ToEntry converts a raw transaction into a transient ledger line. The
// returned entry carries no balance until it is replayed.
func (s *SourceTransaction) ToEntry(party PartyType) (*Entry, error) {
	debit, credit, err := Sides(party, s.Kind, s.Amount)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:          s.ID,
		AccountID:   s.AccountID,
		AccountName: s.AccountName,
		Kind:        s.Kind,
		TxDate:      s.TxDate,
		CreatedAt:   s.CreatedAt,
		ReferenceNo: s.ReferenceNo,
		Description: s.Description,
		Debit:       debit,
		Credit:      credit,
	}, nil
}
