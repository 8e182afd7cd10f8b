package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// UpdateBalance writes balance if the stored version still equals
	// expectedVersion and bumps the version; otherwise it returns
	// domain.ErrVersionConflict.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	List(ctx context.Context, party domain.PartyType, limit, offset int) ([]*domain.Account, error)
}

// LedgerEntryRepository defines data access for the ledger journal.
//
// List returns domain.ErrLedgerStoreMissing when the journal relation does
// not exist in this deployment; that is the signal to derive statements
// from the raw transaction tables instead.
type LedgerEntryRepository interface {
	// List returns entries ascending by (tx date, created at). asOf, when
	// set, excludes entries dated after it.
	List(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.Entry, error)
	ListForAccountTx(ctx context.Context, tx Transaction, accountID string) ([]*domain.Entry, error)
	GetLatestTx(ctx context.Context, tx Transaction, accountID string) (*domain.Entry, error)
	GetByReferenceTx(ctx context.Context, tx Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.Entry, error)
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal) error
	Delete(ctx context.Context, tx Transaction, id string) error
}

// SourceRepository defines data access for the raw business transactions
// (sales invoices, purchases, payments in and out).
type SourceRepository interface {
	// ListInvoices returns the charge side of customer accounts: openings,
	// sale orders and sales invoices.
	ListInvoices(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error)
	// ListPaymentsIn returns payments received from customers.
	ListPaymentsIn(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error)
	// ListPurchases returns the charge side of supplier accounts: openings and purchases.
	ListPurchases(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error)
	// ListPaymentsOut returns payments made to suppliers.
	ListPaymentsOut(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error)

	Create(ctx context.Context, tx Transaction, src *domain.SourceTransaction) error
	GetByReferenceTx(ctx context.Context, tx Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.SourceTransaction, error)
	Update(ctx context.Context, tx Transaction, src *domain.SourceTransaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time. Posting timestamps come from it.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release removes a key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Observer receives ledger telemetry.
type Observer interface {
	ObservePosting(operation string, duration time.Duration, err error)
	ObserveStatement(source domain.StatementSource, entries int)
	ObserveDrift(accountID string, difference decimal.Decimal)
}
