package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

var errTxDone = errors.New("transaction already closed")

// Store is an in-memory backing for the repository interfaces.
// Transactions are serialized and roll back to a snapshot taken at Begin.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	accounts map[string]*domain.Account
	entries  map[string]*domain.Entry
	sources  map[string]*domain.SourceTransaction
	events   []*domain.OutboxEvent

	journalMissing bool
}

// NewStore creates an empty store with a ledger journal.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		entries:  make(map[string]*domain.Entry),
		sources:  make(map[string]*domain.SourceTransaction),
	}
}

// WithoutJournal makes the entry repository behave like a deployment that
// has no ledger journal table.
func (s *Store) WithoutJournal() *Store {
	s.journalMissing = true
	return s
}

// Seed inserts accounts, entries and source transactions directly.
func (s *Store) Seed(accounts []*domain.Account, entries []*domain.Entry, sources []*domain.SourceTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		c := *a
		s.accounts[a.ID] = &c
	}
	for _, e := range entries {
		c := *e
		s.entries[e.ID] = &c
	}
	for _, src := range sources {
		c := *src
		s.sources[src.ID] = &c
	}
}

// Entries returns a copy of every stored journal entry, ascending.
func (s *Store) Entries() []*domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		c := *e
		out = append(out, &c)
	}
	sortEntries(out)
	return out
}

// Sources returns a copy of every stored source transaction.
func (s *Store) Sources() []*domain.SourceTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SourceTransaction, 0, len(s.sources))
	for _, src := range s.sources {
		c := *src
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Events returns the outbox events written so far.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.events...)
}

// Account returns a copy of the stored account.
func (s *Store) Account(id string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	c := *a
	return &c, true
}

type snapshot struct {
	accounts map[string]domain.Account
	entries  map[string]domain.Entry
	sources  map[string]domain.SourceTransaction
	events   int
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		accounts: make(map[string]domain.Account, len(s.accounts)),
		entries:  make(map[string]domain.Entry, len(s.entries)),
		sources:  make(map[string]domain.SourceTransaction, len(s.sources)),
		events:   len(s.events),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = *v
	}
	for k, v := range s.entries {
		snap.entries[k] = *v
	}
	for k, v := range s.sources {
		snap.sources[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*domain.Account, len(snap.accounts))
	for k, v := range snap.accounts {
		s.accounts[k] = &v
	}
	s.entries = make(map[string]*domain.Entry, len(snap.entries))
	for k, v := range snap.entries {
		s.entries[k] = &v
	}
	s.sources = make(map[string]*domain.SourceTransaction, len(snap.sources))
	for k, v := range snap.sources {
		s.sources[k] = &v
	}
	s.events = s.events[:snap.events]
}

func sortEntries(entries []*domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Before(entries[j]) })
}

func onOrBefore(d time.Time, asOf *time.Time) bool {
	return asOf == nil || !domain.Date(d).After(domain.Date(*asOf))
}

func selected(sel domain.AccountSelector, accountID string) bool {
	return sel.All() || sel.AccountID == accountID
}

// MockTransactionManager begins transactions against a Store.
type MockTransactionManager struct {
	store     *Store
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitErr, when set, is returned by every Commit.
	CommitErr error
}

func NewMockTransactionManager(store *Store) *MockTransactionManager {
	return &MockTransactionManager{store: store}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.store.txMu.Lock()
	return &MockTransaction{store: m.store, snap: m.store.snapshot(), commitErr: m.CommitErr}, nil
}

// MockTransaction is a serialized Store transaction.
type MockTransaction struct {
	store     *Store
	snap      snapshot
	commitErr error
	done      bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.done {
		return errTxDone
	}
	if m.commitErr != nil {
		return m.commitErr
	}
	m.done = true
	m.store.txMu.Unlock()
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.done {
		return nil
	}
	m.store.restore(m.snap)
	m.done = true
	m.store.txMu.Unlock()
	return nil
}

// MemAccountRepository is an AccountRepository over a Store.
type MemAccountRepository struct {
	store *Store

	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
}

func NewMemAccountRepository(store *Store) *MemAccountRepository {
	return &MemAccountRepository{store: store}
}

func (m *MemAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.accounts[account.ID]; ok {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	c := *account
	m.store.accounts[account.ID] = &c
	return nil
}

func (m *MemAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := m.store.Account(id); ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MemAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MemAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, expectedVersion, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	a, ok := m.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	a.Balance = balance
	a.Version++
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MemAccountRepository) List(ctx context.Context, party domain.PartyType, limit, offset int) ([]*domain.Account, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	all := make([]*domain.Account, 0, len(m.store.accounts))
	for _, a := range m.store.accounts {
		if a.PartyType == party {
			c := *a
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []*domain.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// MemLedgerEntryRepository is a LedgerEntryRepository over a Store.
type MemLedgerEntryRepository struct {
	store *Store

	ListErr error
}

func NewMemLedgerEntryRepository(store *Store) *MemLedgerEntryRepository {
	return &MemLedgerEntryRepository{store: store}
}

func (m *MemLedgerEntryRepository) List(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.Entry, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.store.journalMissing {
		return nil, domain.ErrLedgerStoreMissing
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]*domain.Entry, 0)
	for _, e := range m.store.entries {
		a, ok := m.store.accounts[e.AccountID]
		if !ok || a.PartyType != sel.PartyType {
			continue
		}
		if selected(sel, e.AccountID) && onOrBefore(e.TxDate, asOf) {
			c := *e
			out = append(out, &c)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *MemLedgerEntryRepository) ListForAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Entry, error) {
	if m.store.journalMissing {
		return []*domain.Entry{}, nil
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]*domain.Entry, 0)
	for _, e := range m.store.entries {
		if e.AccountID == accountID {
			c := *e
			out = append(out, &c)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *MemLedgerEntryRepository) GetLatestTx(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error) {
	entries, err := m.ListForAccountTx(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return entries[len(entries)-1], nil
}

func (m *MemLedgerEntryRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.Entry, error) {
	if m.store.journalMissing {
		return nil, domain.ErrLedgerStoreMissing
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for _, e := range m.store.entries {
		if e.AccountID == accountID && e.Kind == kind && e.ReferenceNo == referenceNo {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MemLedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.store.journalMissing {
		return nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, e := range m.store.entries {
		if e.AccountID == entry.AccountID && e.Kind == entry.Kind && e.ReferenceNo == entry.ReferenceNo {
			return domain.ErrDuplicateReference
		}
	}
	c := *entry
	m.store.entries[entry.ID] = &c
	return nil
}

func (m *MemLedgerEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.store.journalMissing {
		return nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	c := *entry
	m.store.entries[entry.ID] = &c
	return nil
}

func (m *MemLedgerEntryRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error {
	if m.store.journalMissing {
		return nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	e, ok := m.store.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Balance = balance
	return nil
}

func (m *MemLedgerEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.store.journalMissing {
		return nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.store.entries, id)
	return nil
}

// MemSourceRepository is a SourceRepository over a Store.
type MemSourceRepository struct {
	store *Store

	// Errors keyed by list method name: "invoices", "payments_in",
	// "purchases", "payments_out".
	ListErrs map[string]error
}

func NewMemSourceRepository(store *Store) *MemSourceRepository {
	return &MemSourceRepository{store: store, ListErrs: make(map[string]error)}
}

func (m *MemSourceRepository) list(name string, party domain.PartyType, kinds []domain.EntryKind, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	if err := m.ListErrs[name]; err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]*domain.SourceTransaction, 0)
	for _, src := range m.store.sources {
		a, ok := m.store.accounts[src.AccountID]
		if !ok || a.PartyType != party {
			continue
		}
		if !selected(sel, src.AccountID) || !onOrBefore(src.TxDate, asOf) {
			continue
		}
		for _, k := range kinds {
			if src.Kind == k {
				c := *src
				out = append(out, &c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemSourceRepository) ListInvoices(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return m.list("invoices", domain.PartyCustomer, domain.ChargeKinds(domain.PartyCustomer), sel, asOf)
}

func (m *MemSourceRepository) ListPaymentsIn(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return m.list("payments_in", domain.PartyCustomer, []domain.EntryKind{domain.KindPayment}, sel, asOf)
}

func (m *MemSourceRepository) ListPurchases(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return m.list("purchases", domain.PartySupplier, domain.ChargeKinds(domain.PartySupplier), sel, asOf)
}

func (m *MemSourceRepository) ListPaymentsOut(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return m.list("payments_out", domain.PartySupplier, []domain.EntryKind{domain.KindPayment}, sel, asOf)
}

func (m *MemSourceRepository) Create(ctx context.Context, tx usecase.Transaction, src *domain.SourceTransaction) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, s := range m.store.sources {
		if s.AccountID == src.AccountID && s.Kind == src.Kind && s.ReferenceNo == src.ReferenceNo {
			return domain.ErrDuplicateReference
		}
	}
	c := *src
	m.store.sources[src.ID] = &c
	return nil
}

func (m *MemSourceRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.SourceTransaction, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for _, s := range m.store.sources {
		if s.AccountID == accountID && s.Kind == kind && s.ReferenceNo == referenceNo {
			c := *s
			return &c, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MemSourceRepository) Update(ctx context.Context, tx usecase.Transaction, src *domain.SourceTransaction) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.sources[src.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	c := *src
	m.store.sources[src.ID] = &c
	return nil
}

func (m *MemSourceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.sources[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.store.sources, id)
	return nil
}

// MemOutboxRepository is an OutboxRepository over a Store.
type MemOutboxRepository struct {
	store *Store
}

func NewMemOutboxRepository(store *Store) *MemOutboxRepository {
	return &MemOutboxRepository{store: store}
}

func (m *MemOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.events = append(m.store.events, event)
	return nil
}

func (m *MemOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]*domain.OutboxEvent, 0)
	for _, e := range m.store.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, e := range m.store.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("event %s not found", id)
}

func (m *MemOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	kept := m.store.events[:0]
	for _, e := range m.store.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.store.events = kept
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%06d", m.counter)
}

// MockRetrier retries an operation up to Attempts times while it fails
// with a retryable error.
type MockRetrier struct {
	Attempts int
	calls    int
}

func (m *MockRetrier) Retry(ctx context.Context, op func() error) error {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		m.calls++
		if err = op(); err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// Calls returns how many times the operation ran.
func (m *MockRetrier) Calls() int {
	return m.calls
}

// MockClock returns Time and advances it by Step on every call.
type MockClock struct {
	mu   sync.Mutex
	Time time.Time
	Step time.Duration
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Time
	m.Time = m.Time.Add(m.Step)
	return now
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu              sync.Mutex
	keys            map[string][]byte
	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{keys: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	m.keys[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// Has reports whether key is currently held.
func (m *MockIdempotencyStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok
}
