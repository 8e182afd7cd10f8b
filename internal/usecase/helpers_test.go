package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
	"github.com/iho/partyledger/internal/usecase/mocks"
)

// ledger wires every use case over one in-memory store.
type ledger struct {
	store        *mocks.Store
	clock        *mocks.MockClock
	txMgr        *mocks.MockTransactionManager
	accountRepo  *mocks.MemAccountRepository
	entryRepo    *mocks.MemLedgerEntryRepository
	sourceRepo   *mocks.MemSourceRepository
	retrier      *mocks.MockRetrier
	observer     *recordingObserver
	poster       *usecase.PostingUseCase
	transactions *usecase.TransactionUseCase
	accounts     *usecase.AccountUseCase
	reconciler   *usecase.ReconciliationUseCase
}

func newLedger(store *mocks.Store) *ledger {
	l := &ledger{
		store:       store,
		clock:       &mocks.MockClock{Time: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), Step: time.Second},
		txMgr:       mocks.NewMockTransactionManager(store),
		accountRepo: mocks.NewMemAccountRepository(store),
		entryRepo:   mocks.NewMemLedgerEntryRepository(store),
		sourceRepo:  mocks.NewMemSourceRepository(store),
		retrier:     &mocks.MockRetrier{Attempts: 3},
		observer:    &recordingObserver{},
	}

	idGen := mocks.NewMockIDGenerator()
	outbox := mocks.NewMemOutboxRepository(store)

	l.poster = usecase.NewPostingUseCase(l.txMgr, l.accountRepo, l.entryRepo, outbox, l.retrier, idGen, l.observer, zerolog.Nop()).
		WithClock(l.clock)
	l.transactions = usecase.NewTransactionUseCase(l.poster, l.sourceRepo, idGen)
	l.accounts = usecase.NewAccountUseCase(l.txMgr, l.accountRepo, outbox, l.transactions, idGen)
	l.reconciler = usecase.NewReconciliationUseCase(l.accountRepo, l.entryRepo, l.sourceRepo, l.observer, zerolog.Nop())

	return l
}

func (l *ledger) openAccount(t *testing.T, name string, party domain.PartyType) *domain.Account {
	t.Helper()
	acc, err := l.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: name, PartyType: party})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc
}

func (l *ledger) record(t *testing.T, accountID string, kind domain.EntryKind, date time.Time, amount int64, ref string) *usecase.RecordResult {
	t.Helper()
	res, err := l.transactions.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID:   accountID,
		Kind:        kind,
		Date:        date,
		Amount:      decimal.NewFromInt(amount),
		ReferenceNo: ref,
	})
	if err != nil {
		t.Fatalf("record %s %s: %v", kind, ref, err)
	}
	return res
}

func (l *ledger) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, ok := l.store.Account(accountID)
	if !ok {
		t.Fatalf("account %s not found", accountID)
	}
	return acc.Balance
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func assertDecimal(t *testing.T, label string, want int64, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s: expected %d, got %s", label, want, got)
	}
}

func assertBalances(t *testing.T, entries []*domain.Entry, want ...int64) {
	t.Helper()
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		assertDecimal(t, "balance of "+e.ReferenceNo, want[i], e.Balance)
	}
}

type recordingObserver struct {
	mu         sync.Mutex
	postings   map[string]int
	failures   map[string]int
	statements map[domain.StatementSource]int
	drifts     map[string]decimal.Decimal
}

func (o *recordingObserver) ObservePosting(op string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.postings == nil {
		o.postings = make(map[string]int)
		o.failures = make(map[string]int)
	}
	o.postings[op]++
	if err != nil {
		o.failures[op]++
	}
}

func (o *recordingObserver) ObserveStatement(source domain.StatementSource, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.statements == nil {
		o.statements = make(map[domain.StatementSource]int)
	}
	o.statements[source]++
}

func (o *recordingObserver) ObserveDrift(accountID string, diff decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.drifts == nil {
		o.drifts = make(map[string]decimal.Decimal)
	}
	o.drifts[accountID] = diff
}
