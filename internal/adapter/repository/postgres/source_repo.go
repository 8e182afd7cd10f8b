package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/partyledger/internal/domain"
	"github.com/iho/partyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/partyledger/internal/usecase"
)

// SourceRepository implements usecase.SourceRepository over the
// party_transactions table.
type SourceRepository struct {
	queries *generated.Queries
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return newSourceRepository(pool)
}

func newSourceRepository(db generated.DBTX) *SourceRepository {
	return &SourceRepository{queries: generated.New(db)}
}

func (r *SourceRepository) ListInvoices(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return r.list(ctx, domain.PartyCustomer, domain.ChargeKinds(domain.PartyCustomer), sel, asOf)
}

func (r *SourceRepository) ListPaymentsIn(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return r.list(ctx, domain.PartyCustomer, []domain.EntryKind{domain.KindPayment}, sel, asOf)
}

func (r *SourceRepository) ListPurchases(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return r.list(ctx, domain.PartySupplier, domain.ChargeKinds(domain.PartySupplier), sel, asOf)
}

func (r *SourceRepository) ListPaymentsOut(ctx context.Context, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	return r.list(ctx, domain.PartySupplier, []domain.EntryKind{domain.KindPayment}, sel, asOf)
}

func (r *SourceRepository) list(ctx context.Context, party domain.PartyType, kinds []domain.EntryKind, sel domain.AccountSelector, asOf *time.Time) ([]*domain.SourceTransaction, error) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	rows, err := r.queries.ListPartyTransactions(ctx, generated.ListPartyTransactionsParams{
		PartyType: string(party),
		Kinds:     names,
		AccountID: optionalText(sel.AccountID),
		AsOf:      optionalDate(asOf),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.SourceTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.SourceTransaction{
			ID:              row.ID,
			AccountID:       row.AccountID,
			AccountName:     row.AccountName,
			Kind:            domain.EntryKind(row.Kind),
			ReferenceNo:     row.ReferenceNo,
			Description:     row.Description,
			TxDate:          pgDateToTime(row.TxDate),
			Amount:          domain.ParseAmount(textPtr(row.Amount)),
			PreviousBalance: numericToDecimal(row.PreviousBalance),
			FinalBalance:    numericToDecimal(row.FinalBalance),
			CreatedAt:       row.CreatedAt.Time,
		})
	}

	return out, nil
}

// Create inserts a raw transaction row.
func (r *SourceRepository) Create(ctx context.Context, tx usecase.Transaction, src *domain.SourceTransaction) error {
	err := txQueries(tx).CreatePartyTransaction(ctx, generated.CreatePartyTransactionParams{
		ID:              src.ID,
		AccountID:       src.AccountID,
		Kind:            string(src.Kind),
		ReferenceNo:     src.ReferenceNo,
		Description:     src.Description,
		TxDate:          dateToPgDate(src.TxDate),
		Amount:          decimalToNumeric(src.Amount),
		PreviousBalance: decimalToNumeric(src.PreviousBalance),
		FinalBalance:    decimalToNumeric(src.FinalBalance),
		CreatedAt:       timeToPgTimestamptz(src.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(src.CreatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return domain.ErrDuplicateReference
	}

	return err
}

// GetByReferenceTx locks and returns the row for a business reference.
func (r *SourceRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, referenceNo string) (*domain.SourceTransaction, error) {
	row, err := txQueries(tx).GetPartyTransactionByReference(ctx, generated.GetPartyTransactionByReferenceParams{
		AccountID:   accountID,
		Kind:        string(kind),
		ReferenceNo: referenceNo,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return &domain.SourceTransaction{
		ID:              row.ID,
		AccountID:       row.AccountID,
		AccountName:     row.AccountName,
		Kind:            domain.EntryKind(row.Kind),
		ReferenceNo:     row.ReferenceNo,
		Description:     row.Description,
		TxDate:          pgDateToTime(row.TxDate),
		Amount:          domain.ParseAmount(textPtr(row.Amount)),
		PreviousBalance: numericToDecimal(row.PreviousBalance),
		FinalBalance:    numericToDecimal(row.FinalBalance),
		CreatedAt:       row.CreatedAt.Time,
	}, nil
}

// Update rewrites the date, amount and balance snapshots of a row.
func (r *SourceRepository) Update(ctx context.Context, tx usecase.Transaction, src *domain.SourceTransaction) error {
	affected, err := txQueries(tx).UpdatePartyTransaction(ctx, generated.UpdatePartyTransactionParams{
		ID:              src.ID,
		TxDate:          dateToPgDate(src.TxDate),
		Amount:          decimalToNumeric(src.Amount),
		Description:     src.Description,
		PreviousBalance: decimalToNumeric(src.PreviousBalance),
		FinalBalance:    decimalToNumeric(src.FinalBalance),
		UpdatedAt:       timeToPgTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a row.
func (r *SourceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	affected, err := txQueries(tx).DeletePartyTransaction(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
