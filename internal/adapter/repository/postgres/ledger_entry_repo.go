package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/partyledger/internal/usecase"
)

// LedgerEntryRepository implements usecase.LedgerEntryRepository over the
// ledger_entries table.
type LedgerEntryRepository struct {
	queries *generated.Queries
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return newLedgerEntryRepository(pool)
}

func newLedgerEntryRepository(db generated.DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{queries: generated.New(db)}
}

// Exists reports whether the ledger_entries relation is present.
func (r *LedgerEntryRepository) Exists(ctx context.Context) (bool, error) {
	return r.queries.LedgerJournalExists(ctx)
}

// List returns journal entries ordered by (tx_date, created_at, id).
func (r *LedgerEntryRepository) List(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.Entry, error) {
	rows, err := r.queries.ListLedgerEntries(ctx, generated.ListLedgerEntriesParams{
		PartyType: string(sel.PartyType),
		AccountID: optionalText(sel.AccountID),
		AsOf:      optionalDate(asOf),
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.Entry{
			ID:          row.ID,
			AccountID:   row.AccountID,
			AccountName: row.AccountName,
			Kind:        domain.EntryKind(row.Kind),
			ReferenceNo: row.ReferenceNo,
			Description: row.Description,
			TxDate:      pgDateToTime(row.TxDate),
			Debit:       numericToDecimal(row.Debit),
			Credit:      numericToDecimal(row.Credit),
			Balance:     numericToDecimal(row.Balance),
			CreatedAt:   row.CreatedAt.Time,
		})
	}

	return entries, nil
}

// ListForAccountTx returns every entry of an account in replay order.
func (r *LedgerEntryRepository) ListForAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Entry, error) {
	rows, err := txQueries(tx).ListLedgerEntriesForAccount(ctx, accountID)
	if err != nil {
		return nil, mapLedgerError(err)
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// GetLatestTx returns the entry that replays last for an account.
func (r *LedgerEntryRepository) GetLatestTx(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error) {
	row, err := txQueries(tx).GetLatestLedgerEntry(ctx, accountID)
	if err != nil {
		return nil, mapLedgerError(err)
	}

	return rowToEntry(row), nil
}

// GetByReferenceTx returns the entry posted for a business reference.
func (r *LedgerEntryRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.Entry, error) {
	row, err := txQueries(tx).GetLedgerEntryByReference(ctx, generated.GetLedgerEntryByReferenceParams{
		AccountID:   accountID,
		Kind:        string(kind),
		ReferenceNo: referenceNo,
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	return rowToEntry(row), nil
}

// Create inserts an entry.
func (r *LedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	err := txQueries(tx).CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:          entry.ID,
		AccountID:   entry.AccountID,
		Kind:        string(entry.Kind),
		ReferenceNo: entry.ReferenceNo,
		Description: entry.Description,
		TxDate:      dateToPgDate(entry.TxDate),
		Debit:       decimalToNumeric(entry.Debit),
		Credit:      decimalToNumeric(entry.Credit),
		Balance:     decimalToNumeric(entry.Balance),
		CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
	})

	return mapLedgerError(err)
}

// Update rewrites the amounts, date and balance of an entry.
func (r *LedgerEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	affected, err := txQueries(tx).UpdateLedgerEntry(ctx, generated.UpdateLedgerEntryParams{
		ID:          entry.ID,
		TxDate:      dateToPgDate(entry.TxDate),
		Debit:       decimalToNumeric(entry.Debit),
		Credit:      decimalToNumeric(entry.Credit),
		Description: entry.Description,
		Balance:     decimalToNumeric(entry.Balance),
	})

	return affectedOne(affected, err)
}

// UpdateBalance rewrites the stored running balance of an entry.
func (r *LedgerEntryRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error {
	affected, err := txQueries(tx).UpdateLedgerEntryBalance(ctx, generated.UpdateLedgerEntryBalanceParams{
		ID:      id,
		Balance: decimalToNumeric(balance),
	})

	return affectedOne(affected, err)
}

// Delete removes an entry.
func (r *LedgerEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	affected, err := txQueries(tx).DeleteLedgerEntry(ctx, id)

	return affectedOne(affected, err)
}

func affectedOne(affected int64, err error) error {
	if err != nil {
		return mapLedgerError(err)
	}
	if affected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func mapLedgerError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEntryNotFound
	}

	switch pgErrorCode(err) {
	case pgErrUndefinedTable:
		return fmt.Errorf("%w: %v", domain.ErrLedgerStoreMissing, err)
	case pgErrUniqueViolation:
		return domain.ErrDuplicateReference
	}

	return err
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Kind:        domain.EntryKind(row.Kind),
		ReferenceNo: row.ReferenceNo,
		Description: row.Description,
		TxDate:      pgDateToTime(row.TxDate),
		Debit:       numericToDecimal(row.Debit),
		Credit:      numericToDecimal(row.Credit),
		Balance:     numericToDecimal(row.Balance),
		CreatedAt:   row.CreatedAt.Time,
	}
}
