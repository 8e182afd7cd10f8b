package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerEntry = `-- name: CreateLedgerEntry :exec
INSERT INTO ledger_entries (id, account_id, kind, reference_no, description, tx_date, debit, credit, balance, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateLedgerEntryParams struct {
	ID          string             `json:"id"`
	AccountID   string             `json:"account_id"`
	Kind        string             `json:"kind"`
	ReferenceNo string             `json:"reference_no"`
	Description string             `json:"description"`
	TxDate      pgtype.Date        `json:"tx_date"`
	Debit       pgtype.Numeric     `json:"debit"`
	Credit      pgtype.Numeric     `json:"credit"`
	Balance     pgtype.Numeric     `json:"balance"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) error {
	_, err := q.db.Exec(ctx, createLedgerEntry,
		arg.ID,
		arg.AccountID,
		arg.Kind,
		arg.ReferenceNo,
		arg.Description,
		arg.TxDate,
		arg.Debit,
		arg.Credit,
		arg.Balance,
		arg.CreatedAt,
	)
	return err
}

const deleteLedgerEntry = `-- name: DeleteLedgerEntry :execrows
DELETE FROM ledger_entries WHERE id = $1
`

func (q *Queries) DeleteLedgerEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteLedgerEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getLatestLedgerEntry = `-- name: GetLatestLedgerEntry :one
SELECT id, account_id, kind, reference_no, description, tx_date, debit, credit, balance, created_at FROM ledger_entries
WHERE account_id = $1
ORDER BY tx_date DESC, created_at DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestLedgerEntry(ctx context.Context, accountID string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLatestLedgerEntry, accountID)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Kind,
		&i.ReferenceNo,
		&i.Description,
		&i.TxDate,
		&i.Debit,
		&i.Credit,
		&i.Balance,
		&i.CreatedAt,
	)
	return i, err
}

const getLedgerEntryByReference = `-- name: GetLedgerEntryByReference :one
SELECT id, account_id, kind, reference_no, description, tx_date, debit, credit, balance, created_at FROM ledger_entries
WHERE account_id = $1 AND kind = $2 AND reference_no = $3
`

type GetLedgerEntryByReferenceParams struct {
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	ReferenceNo string `json:"reference_no"`
}

func (q *Queries) GetLedgerEntryByReference(ctx context.Context, arg GetLedgerEntryByReferenceParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByReference, arg.AccountID, arg.Kind, arg.ReferenceNo)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Kind,
		&i.ReferenceNo,
		&i.Description,
		&i.TxDate,
		&i.Debit,
		&i.Credit,
		&i.Balance,
		&i.CreatedAt,
	)
	return i, err
}

const listLedgerEntries = `-- name: ListLedgerEntries :many
SELECT le.id, le.account_id, a.name AS account_name, le.kind, le.reference_no, le.description,
       le.tx_date, le.debit, le.credit, le.balance, le.created_at
FROM ledger_entries le
JOIN accounts a ON a.id = le.account_id
WHERE a.party_type = $1
  AND ($2::text IS NULL OR le.account_id = $2::text)
  AND ($3::date IS NULL OR le.tx_date <= $3::date)
ORDER BY le.tx_date, le.created_at, le.id
`

type ListLedgerEntriesParams struct {
	PartyType string      `json:"party_type"`
	AccountID pgtype.Text `json:"account_id"`
	AsOf      pgtype.Date `json:"as_of"`
}

type ListLedgerEntriesRow struct {
	ID          string             `json:"id"`
	AccountID   string             `json:"account_id"`
	AccountName string             `json:"account_name"`
	Kind        string             `json:"kind"`
	ReferenceNo string             `json:"reference_no"`
	Description string             `json:"description"`
	TxDate      pgtype.Date        `json:"tx_date"`
	Debit       pgtype.Numeric     `json:"debit"`
	Credit      pgtype.Numeric     `json:"credit"`
	Balance     pgtype.Numeric     `json:"balance"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) ListLedgerEntries(ctx context.Context, arg ListLedgerEntriesParams) ([]ListLedgerEntriesRow, error) {
	rows, err := q.db.Query(ctx, listLedgerEntries, arg.PartyType, arg.AccountID, arg.AsOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListLedgerEntriesRow
	for rows.Next() {
		var i ListLedgerEntriesRow
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.AccountName,
			&i.Kind,
			&i.ReferenceNo,
			&i.Description,
			&i.TxDate,
			&i.Debit,
			&i.Credit,
			&i.Balance,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLedgerEntriesForAccount = `-- name: ListLedgerEntriesForAccount :many
SELECT id, account_id, kind, reference_no, description, tx_date, debit, credit, balance, created_at FROM ledger_entries
WHERE account_id = $1
ORDER BY tx_date, created_at, id
`

func (q *Queries) ListLedgerEntriesForAccount(ctx context.Context, accountID string) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesForAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Kind,
			&i.ReferenceNo,
			&i.Description,
			&i.TxDate,
			&i.Debit,
			&i.Credit,
			&i.Balance,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLedgerEntry = `-- name: UpdateLedgerEntry :execrows
UPDATE ledger_entries
SET tx_date = $2, debit = $3, credit = $4, description = $5, balance = $6
WHERE id = $1
`

type UpdateLedgerEntryParams struct {
	ID          string         `json:"id"`
	TxDate      pgtype.Date    `json:"tx_date"`
	Debit       pgtype.Numeric `json:"debit"`
	Credit      pgtype.Numeric `json:"credit"`
	Description string         `json:"description"`
	Balance     pgtype.Numeric `json:"balance"`
}

func (q *Queries) UpdateLedgerEntry(ctx context.Context, arg UpdateLedgerEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLedgerEntry,
		arg.ID,
		arg.TxDate,
		arg.Debit,
		arg.Credit,
		arg.Description,
		arg.Balance,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateLedgerEntryBalance = `-- name: UpdateLedgerEntryBalance :execrows
UPDATE ledger_entries SET balance = $2 WHERE id = $1
`

type UpdateLedgerEntryBalanceParams struct {
	ID      string         `json:"id"`
	Balance pgtype.Numeric `json:"balance"`
}

func (q *Queries) UpdateLedgerEntryBalance(ctx context.Context, arg UpdateLedgerEntryBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLedgerEntryBalance, arg.ID, arg.Balance)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const ledgerJournalExists = `-- name: LedgerJournalExists :one
SELECT to_regclass('ledger_entries') IS NOT NULL AS exists
`

func (q *Queries) LedgerJournalExists(ctx context.Context) (bool, error) {
	row := q.db.QueryRow(ctx, ledgerJournalExists)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
