package dto

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate tags of a request.
func Validate(req any) error {
	return validate.Struct(req)
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationDetails flattens a validation error into per-field messages.
// It returns nil for errors that did not come from Validate.
func ValidationDetails(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, FieldError{Field: e.Field(), Message: validationMessage(e)})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed " + e.Tag() + " validation"
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"                   validate:"required,max=255"`
	PartyType      string          `json:"party_type"             validate:"required,oneof=customer supplier"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	OpeningDate    string          `json:"opening_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	party, err := domain.ParsePartyType(r.PartyType)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}

	input := usecase.CreateAccountInput{
		Name:           r.Name,
		PartyType:      party,
		OpeningBalance: r.OpeningBalance,
	}

	if r.OpeningDate != "" {
		d, err := domain.ParseDate(r.OpeningDate)
		if err != nil {
			return usecase.CreateAccountInput{}, err
		}
		input.OpeningDate = &d
	}

	return input, nil
}

// RecordTransactionRequest represents a request to record an invoice,
// purchase or payment.
type RecordTransactionRequest struct {
	AccountID   string          `json:"account_id"   validate:"required"`
	Kind        string          `json:"kind"         validate:"required,oneof=sale_order sales_invoice purchase payment"`
	Date        string          `json:"date"         validate:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no" validate:"required,max=64"`
	Description string          `json:"description"  validate:"max=1024"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordTransactionRequest) ToUseCaseInput() (usecase.RecordTransactionInput, error) {
	kind, err := domain.ParseEntryKind(r.Kind)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}

	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}

	return usecase.RecordTransactionInput{
		AccountID:   r.AccountID,
		Kind:        kind,
		Date:        date,
		Amount:      r.Amount,
		ReferenceNo: r.ReferenceNo,
		Description: r.Description,
	}, nil
}

// AmendTransactionRequest carries the new values of a recorded transaction.
// The kind and reference number come from the URL.
type AmendTransactionRequest struct {
	AccountID   string          `json:"account_id"  validate:"required"`
	Date        string          `json:"date"        validate:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=1024"`
}

// ToUseCaseInput converts to use case input.
func (r *AmendTransactionRequest) ToUseCaseInput(kind domain.EntryKind, referenceNo string) (usecase.AmendTransactionInput, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.AmendTransactionInput{}, err
	}

	return usecase.AmendTransactionInput{
		AccountID:   r.AccountID,
		Kind:        kind,
		ReferenceNo: referenceNo,
		Date:        date,
		Amount:      r.Amount,
		Description: r.Description,
	}, nil
}

// StatementQuery holds the optional date filters of a statement request.
type StatementQuery struct {
	From *time.Time
	To   *time.Time
	AsOf *time.Time
}

// ToUseCaseInput builds the reconcile input for sel.
func (q StatementQuery) ToUseCaseInput(sel domain.AccountSelector) usecase.ReconcileInput {
	return usecase.ReconcileInput{
		Selector: sel,
		Range:    domain.DateRange{From: q.From, To: q.To},
		AsOf:     q.AsOf,
	}
}
