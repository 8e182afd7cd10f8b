package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Acme Trading Ltd"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateReference(t *testing.T) {
	t.Parallel()

	if err := ValidateReference("INV-2024-001"); err != nil {
		t.Fatalf("expected valid reference, got %v", err)
	}

	if err := ValidateReference(""); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	if err := ValidateReference(strings.Repeat("x", MaxReferenceLength+1)); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for long reference, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	valid := decimal.RequireFromString("100.25")
	if err := ValidateAmount(valid); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	tooLarge := decimal.RequireFromString(MaxPostingAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(tooLarge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, err := ValidatePagination(0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}

func TestNewEntryEventPayload(t *testing.T) {
	t.Parallel()

	e := &Entry{
		ID:          "e-1",
		AccountID:   "acc-1",
		Kind:        KindSalesInvoice,
		ReferenceNo: "INV-1",
		TxDate:      mustDate(t, "2024-05-01"),
		Debit:       decimal.NewFromInt(10),
		Credit:      decimal.Zero,
		Balance:     decimal.NewFromInt(10),
	}

	payload := NewEntryEventPayload(e, "10")
	if payload["tx_date"] != "2024-05-01" {
		t.Errorf("unexpected tx_date %v", payload["tx_date"])
	}
	if payload["kind"] != "sales_invoice" {
		t.Errorf("unexpected kind %v", payload["kind"])
	}
	if payload["account_balance"] != "10" {
		t.Errorf("unexpected account_balance %v", payload["account_balance"])
	}
}
