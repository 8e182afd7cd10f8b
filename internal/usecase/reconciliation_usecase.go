package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/partyledger/internal/domain"
)

// ReconciliationUseCase builds running-balance statements and checks the
// stored account balances against them.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   LedgerEntryRepository
	sourceRepo  SourceRepository
	observer    Observer
	clock       Clock
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo LedgerEntryRepository,
	sourceRepo SourceRepository,
	observer Observer,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	if observer == nil {
		observer = nopObserver{}
	}

	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		sourceRepo:  sourceRepo,
		observer:    observer,
		clock:       SystemClock(),
		logger:      logger.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconcileInput selects the statement to build.
type ReconcileInput struct {
	Selector domain.AccountSelector
	Range    domain.DateRange
	// AsOf, when set, ignores every transaction dated after it.
	AsOf *time.Time
}

// Statement is a reconciled account statement, newest entry first.
type Statement struct {
	PartyType domain.PartyType
	AccountID string
	Source    domain.StatementSource
	Entries   []*domain.Entry
	Totals    domain.Totals
	// OpeningBalance and ClosingBalance bracket the date range. They are
	// only meaningful for single-account statements.
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	// StoredMismatches counts journal rows whose stored balance differs
	// from the replayed one. Always zero for derived statements.
	StoredMismatches int
}

// replayed is a full, chronologically ordered and balanced history.
type replayed struct {
	ascending  []*domain.Entry
	source     domain.StatementSource
	mismatches map[string]int
}

// Reconcile produces the ordered, balanced statement for an account, or for
// every account of a party type.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, input ReconcileInput) (*Statement, error) {
	if !input.Selector.PartyType.IsValid() {
		return nil, domain.ErrInvalidPartyType
	}

	if err := input.Range.Validate(); err != nil {
		return nil, err
	}

	history, err := uc.load(ctx, input.Selector, upperBound(input))
	if err != nil {
		return nil, err
	}

	entries := filterByDate(newestFirst(history.ascending), input.Range)

	stmt := &Statement{
		PartyType:      input.Selector.PartyType,
		AccountID:      input.Selector.AccountID,
		Source:         history.source,
		Entries:        entries,
		Totals:         domain.ComputeTotals(entries, input.Selector.PartyType),
		OpeningBalance: decimal.Zero,
		ClosingBalance: decimal.Zero,
	}

	for _, n := range history.mismatches {
		stmt.StoredMismatches += n
	}

	if !input.Selector.All() {
		stmt.OpeningBalance, stmt.ClosingBalance = bracket(history.ascending, input.Range)
	}

	uc.observer.ObserveStatement(history.source, len(entries))

	return stmt, nil
}

// load reads the journal, falling back to the raw transaction tables when
// the journal does not exist, and replays the result.
func (uc *ReconciliationUseCase) load(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) (*replayed, error) {
	entries, err := uc.entryRepo.List(ctx, sel, asOf)
	switch {
	case err == nil:
		stored := make(map[string]decimal.Decimal, len(entries))
		for _, e := range entries {
			stored[e.ID] = e.Balance
		}

		replay(entries)

		mismatches := make(map[string]int)
		for _, e := range entries {
			if !stored[e.ID].Equal(e.Balance) {
				mismatches[e.AccountID]++
			}
		}

		return &replayed{ascending: entries, source: domain.SourceJournal, mismatches: mismatches}, nil

	case errors.Is(err, domain.ErrLedgerStoreMissing):
		uc.logger.Debug().
			Str("party_type", sel.PartyType.String()).
			Str("account_id", sel.AccountID).
			Msg("ledger journal missing, deriving statement from transactions")

		derived, err := uc.derive(ctx, sel, asOf)
		if err != nil {
			return nil, err
		}

		replay(derived)

		return &replayed{ascending: derived, source: domain.SourceDerived}, nil

	default:
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
}

// derive fetches the charge and payment sources of the party type in
// parallel and normalizes them to ledger lines.
func (uc *ReconciliationUseCase) derive(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.Entry, error) {
	listCharges, listPayments := uc.sourceRepo.ListInvoices, uc.sourceRepo.ListPaymentsIn
	if sel.PartyType == domain.PartySupplier {
		listCharges, listPayments = uc.sourceRepo.ListPurchases, uc.sourceRepo.ListPaymentsOut
	}

	var charges, payments []*domain.SourceTransaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		charges, err = listCharges(gctx, sel, asOf)
		if err != nil {
			return fmt.Errorf("list %s charges: %w", sel.PartyType, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = listPayments(gctx, sel, asOf)
		if err != nil {
			return fmt.Errorf("list %s payments: %w", sel.PartyType, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines := make([]*domain.Entry, 0, len(charges)+len(payments))
	for _, src := range append(charges, payments...) {
		line, err := src.ToEntry(sel.PartyType)
		if err != nil {
			uc.logger.Warn().
				Err(err).
				Str("transaction_id", src.ID).
				Str("kind", string(src.Kind)).
				Msg("skipping transaction that cannot be placed on the ledger")
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// upperBound is the latest date that can influence the statement. Later
// entries never change the balance of earlier ones, so they need not be read.
func upperBound(input ReconcileInput) *time.Time {
	bound := input.AsOf
	if input.Range.To != nil && (bound == nil || input.Range.To.Before(*bound)) {
		bound = input.Range.To
	}
	return bound
}

// bracket returns the balance before the range starts and at its end for a
// single-account ascending history.
func bracket(ascending []*domain.Entry, r domain.DateRange) (opening, closing decimal.Decimal) {
	opening, closing = decimal.Zero, decimal.Zero
	for _, e := range ascending {
		d := domain.Date(e.TxDate)
		if r.From != nil && d.Before(domain.Date(*r.From)) {
			opening = e.Balance
		}
		if r.To != nil && d.After(domain.Date(*r.To)) {
			break
		}
		closing = e.Balance
	}
	return opening, closing
}

// DriftReport compares an account's stored balance with its replayed statement.
type DriftReport struct {
	AccountID       string
	PartyType       domain.PartyType
	Source          domain.StatementSource
	RecordedBalance decimal.Decimal
	ReplayedBalance decimal.Decimal
	Difference      decimal.Decimal
	EntryMismatches int
	IsReconciled    bool
	LastChecked     time.Time
}

// CheckAccount verifies that the account's current balance equals the
// balance of its last replayed entry and that every stored entry balance
// matches the replay.
func (uc *ReconciliationUseCase) CheckAccount(ctx context.Context, accountID string) (*DriftReport, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	history, err := uc.load(ctx, domain.ForAccount(account.PartyType, account.ID), nil)
	if err != nil {
		return nil, err
	}

	replayedBalance := decimal.Zero
	if n := len(history.ascending); n > 0 {
		replayedBalance = history.ascending[n-1].Balance
	}

	return uc.report(account, history, replayedBalance), nil
}

// ReconciliationReport summarises a drift check over a party type.
type ReconciliationReport struct {
	PartyType          domain.PartyType
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*DriftReport
	CheckedAt          time.Time
}

// CheckAllAccounts runs the drift check for every account of a party type
// from a single replay of the whole party ledger.
func (uc *ReconciliationUseCase) CheckAllAccounts(ctx context.Context, party domain.PartyType) (*ReconciliationReport, error) {
	if !party.IsValid() {
		return nil, domain.ErrInvalidPartyType
	}

	history, err := uc.load(ctx, domain.AllOf(party), nil)
	if err != nil {
		return nil, err
	}

	closing := lastBalances(history.ascending)

	report := &ReconciliationReport{
		PartyType:     party,
		Discrepancies: make([]*DriftReport, 0),
		CheckedAt:     uc.clock.Now(),
	}

	limit, offset, _ := domain.ValidatePagination(1000, 0)
	for {
		accounts, err := uc.accountRepo.List(ctx, party, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}

		for _, account := range accounts {
			replayedBalance, ok := closing[account.ID]
			if !ok {
				replayedBalance = decimal.Zero
			}

			result := uc.report(account, history, replayedBalance)
			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < limit {
			break
		}
		offset += limit
	}

	return report, nil
}

func (uc *ReconciliationUseCase) report(account *domain.Account, history *replayed, replayedBalance decimal.Decimal) *DriftReport {
	result := &DriftReport{
		AccountID:       account.ID,
		PartyType:       account.PartyType,
		Source:          history.source,
		RecordedBalance: account.Balance,
		ReplayedBalance: replayedBalance,
		Difference:      account.Balance.Sub(replayedBalance),
		EntryMismatches: history.mismatches[account.ID],
		LastChecked:     uc.clock.Now(),
	}
	result.IsReconciled = result.Difference.IsZero() && result.EntryMismatches == 0

	if !result.IsReconciled {
		uc.observer.ObserveDrift(account.ID, result.Difference)
		uc.logger.Warn().
			Str("account_id", account.ID).
			Str("recorded", account.Balance.String()).
			Str("replayed", replayedBalance.String()).
			Int("entry_mismatches", result.EntryMismatches).
			Msg("account balance drift detected")
	}

	return result
}
