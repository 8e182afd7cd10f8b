package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

// TransactionUseCase records business transactions (invoices, purchases,
// payments). Each change writes the raw transaction row and its ledger
// entry in the same database transaction.
type TransactionUseCase struct {
	poster     *PostingUseCase
	sourceRepo SourceRepository
	idGen      IDGenerator
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(poster *PostingUseCase, sourceRepo SourceRepository, idGen IDGenerator) *TransactionUseCase {
	return &TransactionUseCase{
		poster:     poster,
		sourceRepo: sourceRepo,
		idGen:      idGen,
	}
}

// RecordTransactionInput represents input for recording a transaction.
type RecordTransactionInput struct {
	AccountID   string
	Kind        domain.EntryKind
	Date        time.Time
	Amount      decimal.Decimal
	ReferenceNo string
	Description string
}

// AmendTransactionInput represents input for amending a transaction.
type AmendTransactionInput struct {
	AccountID   string
	Kind        domain.EntryKind
	ReferenceNo string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// VoidTransactionInput identifies the transaction to void.
type VoidTransactionInput struct {
	AccountID   string
	Kind        domain.EntryKind
	ReferenceNo string
}

// RecordResult is the stored transaction and the entry posted for it.
type RecordResult struct {
	Transaction *domain.SourceTransaction
	Entry       *domain.Entry
}

// RecordTransaction stores a transaction and posts it to the ledger.
// Openings are only recorded when an account is created.
func (uc *TransactionUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*RecordResult, error) {
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}
	if input.Kind == domain.KindOpening {
		return nil, domain.ErrKindNotAllowed
	}
	if err := validateTransaction(input.Date, input.Amount, input.ReferenceNo); err != nil {
		return nil, err
	}

	var result *RecordResult
	err := uc.poster.withAccount(ctx, OpPost, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		r, err := uc.record(ctx, tx, account, input)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AmendTransaction changes the date, amount or description of a recorded
// transaction.
func (uc *TransactionUseCase) AmendTransaction(ctx context.Context, input AmendTransactionInput) (*RecordResult, error) {
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}
	if err := validateTransaction(input.Date, input.Amount, input.ReferenceNo); err != nil {
		return nil, err
	}

	var result *RecordResult
	err := uc.poster.withAccount(ctx, OpAmend, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		src, err := uc.sourceRepo.GetByReferenceTx(ctx, tx, account.ID, input.Kind, input.ReferenceNo)
		if err != nil {
			return err
		}

		prevDebit, prevCredit, err := domain.Sides(account.PartyType, src.Kind, src.Amount)
		if err != nil {
			return err
		}

		debit, credit, err := domain.Sides(account.PartyType, input.Kind, input.Amount)
		if err != nil {
			return err
		}

		posted, err := uc.poster.amend(ctx, tx, account, AmendEntryInput{
			AccountID:   account.ID,
			Kind:        input.Kind,
			ReferenceNo: input.ReferenceNo,
			Date:        input.Date,
			Debit:       debit,
			Credit:      credit,
			Description: input.Description,
			Previous:    &Amounts{Debit: prevDebit, Credit: prevCredit},
		})
		if err != nil {
			return err
		}

		src.TxDate = domain.Date(input.Date)
		src.Amount = input.Amount
		src.Description = input.Description
		src.PreviousBalance = posted.PreviousBalance
		src.FinalBalance = posted.NewBalance

		if err := uc.sourceRepo.Update(ctx, tx, src); err != nil {
			return err
		}

		result = &RecordResult{Transaction: src, Entry: posted.Entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// VoidTransaction deletes a recorded transaction and its ledger entry.
func (uc *TransactionUseCase) VoidTransaction(ctx context.Context, input VoidTransactionInput) (*RecordResult, error) {
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}

	var result *RecordResult
	err := uc.poster.withAccount(ctx, OpVoid, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		src, err := uc.sourceRepo.GetByReferenceTx(ctx, tx, account.ID, input.Kind, input.ReferenceNo)
		if err != nil {
			return err
		}

		debit, credit, err := domain.Sides(account.PartyType, src.Kind, src.Amount)
		if err != nil {
			return err
		}

		posted, err := uc.poster.void(ctx, tx, account, VoidEntryInput{
			AccountID:   account.ID,
			Kind:        input.Kind,
			ReferenceNo: input.ReferenceNo,
			Previous:    &Amounts{Debit: debit, Credit: credit},
		})
		if err != nil {
			return err
		}

		if err := uc.sourceRepo.Delete(ctx, tx, src.ID); err != nil {
			return err
		}

		src.PreviousBalance = posted.PreviousBalance
		src.FinalBalance = posted.NewBalance
		result = &RecordResult{Transaction: src, Entry: posted.Entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// record writes the transaction row and its entry under one ID so both
// statement sources order them identically.
func (uc *TransactionUseCase) record(ctx context.Context, tx Transaction, account *domain.Account, input RecordTransactionInput) (*RecordResult, error) {
	debit, credit, err := domain.Sides(account.PartyType, input.Kind, input.Amount)
	if err != nil {
		return nil, err
	}

	id := uc.idGen.Generate()

	posted, err := uc.poster.post(ctx, tx, account, PostInput{
		EntryID:     id,
		AccountID:   account.ID,
		Date:        input.Date,
		Kind:        input.Kind,
		Debit:       debit,
		Credit:      credit,
		ReferenceNo: input.ReferenceNo,
		Description: input.Description,
	})
	if err != nil {
		return nil, err
	}

	src := &domain.SourceTransaction{
		ID:              id,
		AccountID:       account.ID,
		AccountName:     account.Name,
		Kind:            input.Kind,
		TxDate:          posted.Entry.TxDate,
		CreatedAt:       posted.Entry.CreatedAt,
		ReferenceNo:     input.ReferenceNo,
		Description:     input.Description,
		Amount:          input.Amount,
		PreviousBalance: posted.PreviousBalance,
		FinalBalance:    posted.NewBalance,
	}

	if err := uc.sourceRepo.Create(ctx, tx, src); err != nil {
		return nil, err
	}

	return &RecordResult{Transaction: src, Entry: posted.Entry}, nil
}

func validateTransaction(date time.Time, amount decimal.Decimal, referenceNo string) error {
	if date.IsZero() {
		return domain.ErrInvalidDate
	}
	if err := domain.ValidateReference(referenceNo); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return domain.ValidateAmount(amount)
}
