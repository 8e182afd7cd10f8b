package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Name:           "Acme",
		PartyType:      "Supplier",
		OpeningBalance: decimal.NewFromInt(-200),
		OpeningDate:    "2024-01-31",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Name != "Acme" || got.PartyType != domain.PartySupplier {
		t.Fatalf("unexpected input %+v", got)
	}
	if !got.OpeningBalance.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("expected opening balance -200, got %s", got.OpeningBalance)
	}
	if got.OpeningDate == nil || !got.OpeningDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected opening date %v", got.OpeningDate)
	}
}

func TestCreateAccountRequest_InvalidPartyType(t *testing.T) {
	req := &CreateAccountRequest{Name: "Acme", PartyType: "partner"}

	if _, err := req.ToUseCaseInput(); !errors.Is(err, domain.ErrInvalidPartyType) {
		t.Fatalf("expected ErrInvalidPartyType, got %v", err)
	}
}

func TestRecordTransactionRequest_ToUseCaseInput(t *testing.T) {
	req := &RecordTransactionRequest{
		AccountID:   "acc-1",
		Kind:        "sales_invoice",
		Date:        "2024-03-05",
		Amount:      decimal.RequireFromString("100.50"),
		ReferenceNo: "INV-1",
		Description: "March invoice",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != domain.KindSalesInvoice || got.ReferenceNo != "INV-1" || got.AccountID != "acc-1" {
		t.Fatalf("unexpected input %+v", got)
	}
	if !got.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", got.Date)
	}
	if !got.Amount.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestAmendTransactionRequest_ToUseCaseInput(t *testing.T) {
	req := &AmendTransactionRequest{AccountID: "acc-1", Date: "2024-03-06", Amount: decimal.NewFromInt(80)}

	got, err := req.ToUseCaseInput(domain.KindPayment, "PAY-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != domain.KindPayment || got.ReferenceNo != "PAY-1" || !got.Amount.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		req        any
		wantFields []string
	}{
		{
			name: "valid account",
			req:  &CreateAccountRequest{Name: "Acme", PartyType: "customer"},
		},
		{
			name:       "missing account fields",
			req:        &CreateAccountRequest{},
			wantFields: []string{"name", "party_type"},
		},
		{
			name:       "bad opening date",
			req:        &CreateAccountRequest{Name: "Acme", PartyType: "customer", OpeningDate: "31/01/2024"},
			wantFields: []string{"opening_date"},
		},
		{
			name:       "opening is not a recordable kind",
			req:        &RecordTransactionRequest{AccountID: "acc-1", Kind: "opening", Date: "2024-01-01", ReferenceNo: "X"},
			wantFields: []string{"kind"},
		},
		{
			name:       "missing reference and date",
			req:        &RecordTransactionRequest{AccountID: "acc-1", Kind: "payment"},
			wantFields: []string{"date", "reference_no"},
		},
		{
			name:       "amend without account",
			req:        &AmendTransactionRequest{Date: "2024-01-01"},
			wantFields: []string{"account_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			details := ValidationDetails(err)
			if len(details) != len(tt.wantFields) {
				t.Fatalf("expected %d field errors, got %+v", len(tt.wantFields), details)
			}
			for i, field := range tt.wantFields {
				if details[i].Field != field {
					t.Errorf("expected field %q at %d, got %q", field, i, details[i].Field)
				}
				if details[i].Message == "" {
					t.Errorf("expected a message for %q", field)
				}
			}
		})
	}
}

func TestValidationDetails_IgnoresOtherErrors(t *testing.T) {
	if details := ValidationDetails(errors.New("boom")); details != nil {
		t.Fatalf("expected nil details, got %+v", details)
	}
}
