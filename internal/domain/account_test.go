package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePartyType(t *testing.T) {
	tests := []struct {
		input       string
		expected    PartyType
		expectError bool
	}{
		{input: "customer", expected: PartyCustomer},
		{input: " Supplier ", expected: PartySupplier},
		{input: "vendor", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePartyType(tt.input)
			if tt.expectError {
				if !errors.Is(err, ErrInvalidPartyType) {
					t.Errorf("expected ErrInvalidPartyType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestAccount_Apply(t *testing.T) {
	account := &Account{Balance: decimal.NewFromInt(100)}

	if got := account.Apply(decimal.NewFromInt(50), decimal.Zero); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("debit: expected 150, got %s", got)
	}
	if got := account.Apply(decimal.Zero, decimal.NewFromInt(130)); !got.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("credit: expected -30, got %s", got)
	}
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Error("Apply must not modify the account")
	}
}

func TestSides(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name       string
		party      PartyType
		kind       EntryKind
		amount     decimal.Decimal
		wantDebit  int64
		wantCredit int64
		wantErr    error
	}{
		{name: "customer invoice", party: PartyCustomer, kind: KindSalesInvoice, amount: hundred, wantDebit: 100},
		{name: "customer sale order", party: PartyCustomer, kind: KindSaleOrder, amount: hundred, wantDebit: 100},
		{name: "customer opening", party: PartyCustomer, kind: KindOpening, amount: hundred, wantDebit: 100},
		{name: "customer negative opening", party: PartyCustomer, kind: KindOpening, amount: hundred.Neg(), wantCredit: 100},
		{name: "customer payment", party: PartyCustomer, kind: KindPayment, amount: hundred, wantCredit: 100},
		{name: "customer purchase", party: PartyCustomer, kind: KindPurchase, amount: hundred, wantErr: ErrKindNotAllowed},
		{name: "supplier purchase", party: PartySupplier, kind: KindPurchase, amount: hundred, wantCredit: 100},
		{name: "supplier opening", party: PartySupplier, kind: KindOpening, amount: hundred, wantCredit: 100},
		{name: "supplier negative opening", party: PartySupplier, kind: KindOpening, amount: hundred.Neg(), wantDebit: 100},
		{name: "supplier payment", party: PartySupplier, kind: KindPayment, amount: hundred, wantDebit: 100},
		{name: "supplier invoice", party: PartySupplier, kind: KindSalesInvoice, amount: hundred, wantErr: ErrKindNotAllowed},
		{name: "negative payment", party: PartyCustomer, kind: KindPayment, amount: hundred.Neg(), wantErr: ErrInvalidAmount},
		{name: "unknown party", party: PartyType("bank"), kind: KindPayment, amount: hundred, wantErr: ErrInvalidPartyType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit, err := Sides(tt.party, tt.kind, tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !debit.Equal(decimal.NewFromInt(tt.wantDebit)) {
				t.Errorf("debit: expected %d, got %s", tt.wantDebit, debit)
			}
			if !credit.Equal(decimal.NewFromInt(tt.wantCredit)) {
				t.Errorf("credit: expected %d, got %s", tt.wantCredit, credit)
			}
		})
	}
}

func TestSides_MirroredParties(t *testing.T) {
	amount := decimal.RequireFromString("125.40")

	for _, pair := range [][2]EntryKind{
		{KindSalesInvoice, KindPurchase},
		{KindOpening, KindOpening},
		{KindPayment, KindPayment},
	} {
		cd, cc, err := Sides(PartyCustomer, pair[0], amount)
		if err != nil {
			t.Fatal(err)
		}
		sd, sc, err := Sides(PartySupplier, pair[1], amount)
		if err != nil {
			t.Fatal(err)
		}
		if !cd.Equal(sc) || !cc.Equal(sd) {
			t.Errorf("%s/%s: customer (%s,%s) is not the mirror of supplier (%s,%s)", pair[0], pair[1], cd, cc, sd, sc)
		}
	}
}

func TestSourceTransaction_ToEntry(t *testing.T) {
	src := &SourceTransaction{
		ID:          "tx-1",
		AccountID:   "acc-1",
		Kind:        KindPayment,
		ReferenceNo: "PAY-1",
		Amount:      decimal.NewFromInt(40),
	}

	entry, err := src.ToEntry(PartySupplier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "tx-1" || entry.ReferenceNo != "PAY-1" {
		t.Errorf("identity not carried over: %+v", entry)
	}
	if !entry.Debit.Equal(decimal.NewFromInt(40)) || !entry.Credit.IsZero() {
		t.Errorf("expected debit 40, got debit %s credit %s", entry.Debit, entry.Credit)
	}
	if !entry.Balance.IsZero() {
		t.Error("derived entries carry no balance before replay")
	}
}

func TestEntry_Before(t *testing.T) {
	d1 := Date(mustDate(t, "2024-01-01"))
	d2 := Date(mustDate(t, "2024-01-02"))
	early := d1.Add(9 * 3600e9)
	late := d1.Add(10 * 3600e9)

	tests := []struct {
		name string
		a, b *Entry
		want bool
	}{
		{name: "earlier date", a: &Entry{TxDate: d1, CreatedAt: late}, b: &Entry{TxDate: d2, CreatedAt: early}, want: true},
		{name: "same date earlier creation", a: &Entry{TxDate: d1, CreatedAt: early}, b: &Entry{TxDate: d1, CreatedAt: late}, want: true},
		{name: "same date later creation", a: &Entry{TxDate: d1, CreatedAt: late}, b: &Entry{TxDate: d1, CreatedAt: early}, want: false},
		{name: "exact tie by id", a: &Entry{ID: "a", TxDate: d1, CreatedAt: early}, b: &Entry{ID: "b", TxDate: d1, CreatedAt: early}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidateSides(t *testing.T) {
	ten := decimal.NewFromInt(10)

	if err := ValidateSides(ten, decimal.Zero); err != nil {
		t.Errorf("debit only: unexpected error %v", err)
	}
	if err := ValidateSides(decimal.Zero, ten); err != nil {
		t.Errorf("credit only: unexpected error %v", err)
	}
	if err := ValidateSides(ten, ten); !errors.Is(err, ErrOneSidedEntry) {
		t.Errorf("both sides: expected ErrOneSidedEntry, got %v", err)
	}
	if err := ValidateSides(decimal.Zero, decimal.Zero); !errors.Is(err, ErrOneSidedEntry) {
		t.Errorf("no sides: expected ErrOneSidedEntry, got %v", err)
	}
	if err := ValidateSides(ten.Neg(), decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative: expected ErrInvalidAmount, got %v", err)
	}
}
