package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

// PostingUseCase writes ledger entries and keeps the account balance and
// the stored running balances in step with them.
//
// Postings to one account are serialized twice: by an in-process lock and
// by the row lock taken in GetByIDForUpdate. The version check on the
// account update catches writers in other processes that skip the row lock.
type PostingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   LedgerEntryRepository
	outboxRepo  OutboxRepository
	retrier     Retrier
	idGen       IDGenerator
	clock       Clock
	observer    Observer
	locks       *accountLocks
	logger      zerolog.Logger
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo LedgerEntryRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
	observer Observer,
	logger zerolog.Logger,
) *PostingUseCase {
	if retrier == nil {
		retrier = onceRetrier{}
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &PostingUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		retrier:     retrier,
		idGen:       idGen,
		clock:       SystemClock(),
		observer:    observer,
		locks:       newAccountLocks(),
		logger:      logger.With().Str("component", "poster").Logger(),
	}
}

// WithClock replaces the clock used for entry timestamps.
func (uc *PostingUseCase) WithClock(c Clock) *PostingUseCase {
	uc.clock = c
	return uc
}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, op func() error) error { return op() }

// PostInput describes a new ledger line.
type PostInput struct {
	// EntryID is optional; a new ID is generated when empty.
	EntryID     string
	AccountID   string
	Date        time.Time
	Kind        domain.EntryKind
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	ReferenceNo string
	Description string
}

// Amounts is a debit/credit pair.
type Amounts struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Net returns debit minus credit.
func (a Amounts) Net() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// AmendEntryInput replaces the date, amounts and description of the entry
// identified by (AccountID, Kind, ReferenceNo).
type AmendEntryInput struct {
	AccountID   string
	Kind        domain.EntryKind
	ReferenceNo string
	Date        time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	// Previous is the amounts being replaced. It is only consulted when the
	// deployment keeps no journal to read them from.
	Previous *Amounts
}

// VoidEntryInput removes the entry identified by (AccountID, Kind, ReferenceNo).
type VoidEntryInput struct {
	AccountID   string
	Kind        domain.EntryKind
	ReferenceNo string
	Previous    *Amounts
}

// PostResult is the outcome of a posting.
type PostResult struct {
	Entry           *domain.Entry
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
}

// Post records one ledger line. The stored running balance of the new entry
// and of every later entry of the account is kept correct, including when
// the line is back-dated.
func (uc *PostingUseCase) Post(ctx context.Context, input PostInput) (*PostResult, error) {
	if err := validatePost(input); err != nil {
		return nil, err
	}

	var result *PostResult
	err := uc.withAccount(ctx, OpPost, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		r, err := uc.post(ctx, tx, account, input)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Amend rewrites an existing entry and recomputes the running balances
// that follow it.
func (uc *PostingUseCase) Amend(ctx context.Context, input AmendEntryInput) (*PostResult, error) {
	if err := domain.ValidateSides(input.Debit, input.Credit); err != nil {
		return nil, err
	}

	var result *PostResult
	err := uc.withAccount(ctx, OpAmend, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		r, err := uc.amend(ctx, tx, account, input)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Void deletes an entry and recomputes the running balances that follow it.
func (uc *PostingUseCase) Void(ctx context.Context, input VoidEntryInput) (*PostResult, error) {
	var result *PostResult
	err := uc.withAccount(ctx, OpVoid, input.AccountID, func(ctx context.Context, tx Transaction, account *domain.Account) error {
		r, err := uc.void(ctx, tx, account, input)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func validatePost(input PostInput) error {
	if !input.Kind.IsValid() {
		return domain.ErrInvalidKind
	}
	if input.Date.IsZero() {
		return domain.ErrInvalidDate
	}
	if err := domain.ValidateReference(input.ReferenceNo); err != nil {
		return err
	}
	if err := domain.ValidateAmount(input.Debit.Add(input.Credit)); err != nil {
		return err
	}
	return domain.ValidateSides(input.Debit, input.Credit)
}

// withAccount runs fn inside a transaction holding both the in-process and
// the row lock of accountID. The whole attempt is retried on transient
// conflicts.
func (uc *PostingUseCase) withAccount(
	ctx context.Context,
	op, accountID string,
	fn func(ctx context.Context, tx Transaction, account *domain.Account) error,
) error {
	start := time.Now()

	unlock := uc.locks.lock(accountID)
	defer unlock()

	err := uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
		if err != nil {
			return err
		}

		if err := fn(txCtx, tx, account); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})

	uc.observer.ObservePosting(op, time.Since(start), err)
	if err != nil {
		uc.logger.Debug().Err(err).Str("op", op).Str("account_id", accountID).Msg("posting failed")
	}

	return err
}

// post writes the entry inside tx. account must be locked by the caller and
// is updated in place.
func (uc *PostingUseCase) post(ctx context.Context, tx Transaction, account *domain.Account, input PostInput) (*PostResult, error) {
	id := input.EntryID
	if id == "" {
		id = uc.idGen.Generate()
	}

	previous := account.Balance
	newBalance := account.Apply(input.Debit, input.Credit)

	entry := &domain.Entry{
		ID:          id,
		AccountID:   account.ID,
		AccountName: account.Name,
		Kind:        input.Kind,
		TxDate:      domain.Date(input.Date),
		CreatedAt:   uc.clock.Now(),
		ReferenceNo: input.ReferenceNo,
		Description: input.Description,
		Debit:       input.Debit,
		Credit:      input.Credit,
		Balance:     newBalance,
	}

	backdated := false
	latest, err := uc.entryRepo.GetLatestTx(ctx, tx, account.ID)
	switch {
	case err == nil:
		backdated = entry.Before(latest)
	case errors.Is(err, domain.ErrEntryNotFound):
	default:
		return nil, fmt.Errorf("get latest entry: %w", err)
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if backdated {
		newBalance, err = uc.settle(ctx, tx, account, newBalance, entry)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.commitBalance(ctx, tx, account, newBalance); err != nil {
		return nil, err
	}

	if err := uc.emit(ctx, tx, domain.EventTypeEntryPosted, entry, account); err != nil {
		return nil, err
	}

	return &PostResult{Entry: entry, PreviousBalance: previous, NewBalance: newBalance}, nil
}

func (uc *PostingUseCase) amend(ctx context.Context, tx Transaction, account *domain.Account, input AmendEntryInput) (*PostResult, error) {
	entry, err := uc.entryRepo.GetByReferenceTx(ctx, tx, account.ID, input.Kind, input.ReferenceNo)
	var oldNet decimal.Decimal
	switch {
	case err == nil:
		oldNet = entry.Net()
	case errors.Is(err, domain.ErrLedgerStoreMissing) && input.Previous != nil:
		oldNet = input.Previous.Net()
		entry = &domain.Entry{
			AccountID:   account.ID,
			AccountName: account.Name,
			Kind:        input.Kind,
			ReferenceNo: input.ReferenceNo,
			CreatedAt:   uc.clock.Now(),
		}
	case errors.Is(err, domain.ErrLedgerStoreMissing):
		return nil, domain.ErrEntryNotFound
	default:
		return nil, err
	}

	previous := account.Balance
	newBalance := previous.Sub(oldNet).Add(input.Debit.Sub(input.Credit))

	entry.TxDate = domain.Date(input.Date)
	entry.Debit = input.Debit
	entry.Credit = input.Credit
	entry.Description = input.Description
	entry.Balance = newBalance

	if entry.ID != "" {
		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	newBalance, err = uc.settle(ctx, tx, account, newBalance, entry)
	if err != nil {
		return nil, err
	}

	if err := uc.commitBalance(ctx, tx, account, newBalance); err != nil {
		return nil, err
	}

	if err := uc.emit(ctx, tx, domain.EventTypeEntryAmended, entry, account); err != nil {
		return nil, err
	}

	return &PostResult{Entry: entry, PreviousBalance: previous, NewBalance: newBalance}, nil
}

func (uc *PostingUseCase) void(ctx context.Context, tx Transaction, account *domain.Account, input VoidEntryInput) (*PostResult, error) {
	entry, err := uc.entryRepo.GetByReferenceTx(ctx, tx, account.ID, input.Kind, input.ReferenceNo)
	var oldNet decimal.Decimal
	switch {
	case err == nil:
		oldNet = entry.Net()
		if err := uc.entryRepo.Delete(ctx, tx, entry.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrLedgerStoreMissing) && input.Previous != nil:
		oldNet = input.Previous.Net()
		entry = &domain.Entry{
			AccountID:   account.ID,
			AccountName: account.Name,
			Kind:        input.Kind,
			ReferenceNo: input.ReferenceNo,
			Debit:       input.Previous.Debit,
			Credit:      input.Previous.Credit,
		}
	case errors.Is(err, domain.ErrLedgerStoreMissing):
		return nil, domain.ErrEntryNotFound
	default:
		return nil, err
	}

	previous := account.Balance
	newBalance, err := uc.settle(ctx, tx, account, previous.Sub(oldNet), nil)
	if err != nil {
		return nil, err
	}

	if err := uc.commitBalance(ctx, tx, account, newBalance); err != nil {
		return nil, err
	}

	if err := uc.emit(ctx, tx, domain.EventTypeEntryVoided, entry, account); err != nil {
		return nil, err
	}

	return &PostResult{Entry: entry, PreviousBalance: previous, NewBalance: newBalance}, nil
}

// settle replays the account's journal inside tx, rewrites every stored
// balance that changed, and returns the closing balance. expected is the
// balance derived from the account row; a journal that disagrees with it
// wins and the difference is logged. When changed is set, its Balance is
// refreshed from the replay.
func (uc *PostingUseCase) settle(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	expected decimal.Decimal,
	changed *domain.Entry,
) (decimal.Decimal, error) {
	entries, err := uc.entryRepo.ListForAccountTx(ctx, tx, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list account entries: %w", err)
	}

	if len(entries) == 0 {
		return expected, nil
	}

	stored := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		stored[e.ID] = e.Balance
	}

	replay(entries)

	rewritten := 0
	for _, e := range entries {
		if stored[e.ID].Equal(e.Balance) {
			continue
		}
		if err := uc.entryRepo.UpdateBalance(ctx, tx, e.ID, e.Balance); err != nil {
			return decimal.Zero, err
		}
		rewritten++
	}

	if changed != nil {
		for _, e := range entries {
			if e.ID == changed.ID {
				changed.Balance = e.Balance
				break
			}
		}
	}

	closing := entries[len(entries)-1].Balance
	if !closing.Equal(expected) {
		uc.logger.Warn().
			Str("account_id", account.ID).
			Str("account_balance", expected.String()).
			Str("journal_balance", closing.String()).
			Msg("account balance disagreed with journal, using journal")
	}

	uc.logger.Debug().
		Str("account_id", account.ID).
		Int("entries", len(entries)).
		Int("rewritten", rewritten).
		Msg("running balances recomputed")

	return closing, nil
}

func (uc *PostingUseCase) commitBalance(ctx context.Context, tx Transaction, account *domain.Account, balance decimal.Decimal) error {
	now := uc.clock.Now()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balance, account.Version, now); err != nil {
		return err
	}

	account.Balance = balance
	account.Version++
	account.UpdatedAt = now

	return nil
}

func (uc *PostingUseCase) emit(ctx context.Context, tx Transaction, eventType string, entry *domain.Entry, account *domain.Account) error {
	aggregateID := entry.ID
	if aggregateID == "" {
		aggregateID = entry.AccountID + "/" + string(entry.Kind) + "/" + entry.ReferenceNo
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     eventType,
		Payload:       domain.NewEntryEventPayload(entry, account.Balance.String()),
		CreatedAt:     uc.clock.Now(),
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}
