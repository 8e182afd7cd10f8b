package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/usecase"
)

// NullLedgerEntryRepository stands in for a deployment without the
// ledger_entries table. Reads report the store as missing so statements
// fall back to the transaction tables; writes are dropped.
type NullLedgerEntryRepository struct{}

// NewNullLedgerEntryRepository creates a new NullLedgerEntryRepository.
func NewNullLedgerEntryRepository() *NullLedgerEntryRepository {
	return &NullLedgerEntryRepository{}
}

func (r *NullLedgerEntryRepository) List(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.Entry, error) {
	return nil, domain.ErrLedgerStoreMissing
}

func (r *NullLedgerEntryRepository) ListForAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Entry, error) {
	return []*domain.Entry{}, nil
}

func (r *NullLedgerEntryRepository) GetLatestTx(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error) {
	return nil, domain.ErrEntryNotFound
}

func (r *NullLedgerEntryRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.Entry, error) {
	return nil, domain.ErrLedgerStoreMissing
}

func (r *NullLedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	return nil
}

func (r *NullLedgerEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	return nil
}

func (r *NullLedgerEntryRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error {
	return nil
}

func (r *NullLedgerEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return nil
}
