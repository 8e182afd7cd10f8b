package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPartyTransaction = `-- name: CreatePartyTransaction :exec
INSERT INTO party_transactions (id, account_id, kind, reference_no, description, tx_date, amount, previous_balance, final_balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreatePartyTransactionParams struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	Kind            string             `json:"kind"`
	ReferenceNo     string             `json:"reference_no"`
	Description     string             `json:"description"`
	TxDate          pgtype.Date        `json:"tx_date"`
	Amount          pgtype.Numeric     `json:"amount"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	FinalBalance    pgtype.Numeric     `json:"final_balance"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreatePartyTransaction(ctx context.Context, arg CreatePartyTransactionParams) error {
	_, err := q.db.Exec(ctx, createPartyTransaction,
		arg.ID,
		arg.AccountID,
		arg.Kind,
		arg.ReferenceNo,
		arg.Description,
		arg.TxDate,
		arg.Amount,
		arg.PreviousBalance,
		arg.FinalBalance,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deletePartyTransaction = `-- name: DeletePartyTransaction :execrows
DELETE FROM party_transactions WHERE id = $1
`

func (q *Queries) DeletePartyTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deletePartyTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getPartyTransactionByReference = `-- name: GetPartyTransactionByReference :one
SELECT pt.id, pt.account_id, a.name AS account_name, pt.kind, pt.reference_no, pt.description,
       pt.tx_date, pt.amount::text AS amount, pt.previous_balance, pt.final_balance, pt.created_at
FROM party_transactions pt
JOIN accounts a ON a.id = pt.account_id
WHERE pt.account_id = $1 AND pt.kind = $2 AND pt.reference_no = $3
FOR UPDATE OF pt
`

type GetPartyTransactionByReferenceParams struct {
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	ReferenceNo string `json:"reference_no"`
}

type GetPartyTransactionByReferenceRow struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	AccountName     string             `json:"account_name"`
	Kind            string             `json:"kind"`
	ReferenceNo     string             `json:"reference_no"`
	Description     string             `json:"description"`
	TxDate          pgtype.Date        `json:"tx_date"`
	Amount          pgtype.Text        `json:"amount"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	FinalBalance    pgtype.Numeric     `json:"final_balance"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetPartyTransactionByReference(ctx context.Context, arg GetPartyTransactionByReferenceParams) (GetPartyTransactionByReferenceRow, error) {
	row := q.db.QueryRow(ctx, getPartyTransactionByReference, arg.AccountID, arg.Kind, arg.ReferenceNo)
	var i GetPartyTransactionByReferenceRow
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.AccountName,
		&i.Kind,
		&i.ReferenceNo,
		&i.Description,
		&i.TxDate,
		&i.Amount,
		&i.PreviousBalance,
		&i.FinalBalance,
		&i.CreatedAt,
	)
	return i, err
}

const listPartyTransactions = `-- name: ListPartyTransactions :many
SELECT pt.id, pt.account_id, a.name AS account_name, pt.kind, pt.reference_no, pt.description,
       pt.tx_date, pt.amount::text AS amount, pt.previous_balance, pt.final_balance, pt.created_at
FROM party_transactions pt
JOIN accounts a ON a.id = pt.account_id
WHERE a.party_type = $1
  AND pt.kind = ANY($2::text[])
  AND ($3::text IS NULL OR pt.account_id = $3::text)
  AND ($4::date IS NULL OR pt.tx_date <= $4::date)
ORDER BY pt.tx_date, pt.created_at, pt.id
`

type ListPartyTransactionsParams struct {
	PartyType string      `json:"party_type"`
	Kinds     []string    `json:"kinds"`
	AccountID pgtype.Text `json:"account_id"`
	AsOf      pgtype.Date `json:"as_of"`
}

type ListPartyTransactionsRow struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	AccountName     string             `json:"account_name"`
	Kind            string             `json:"kind"`
	ReferenceNo     string             `json:"reference_no"`
	Description     string             `json:"description"`
	TxDate          pgtype.Date        `json:"tx_date"`
	Amount          pgtype.Text        `json:"amount"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	FinalBalance    pgtype.Numeric     `json:"final_balance"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) ListPartyTransactions(ctx context.Context, arg ListPartyTransactionsParams) ([]ListPartyTransactionsRow, error) {
	rows, err := q.db.Query(ctx, listPartyTransactions,
		arg.PartyType,
		arg.Kinds,
		arg.AccountID,
		arg.AsOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPartyTransactionsRow
	for rows.Next() {
		var i ListPartyTransactionsRow
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.AccountName,
			&i.Kind,
			&i.ReferenceNo,
			&i.Description,
			&i.TxDate,
			&i.Amount,
			&i.PreviousBalance,
			&i.FinalBalance,
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

const updatePartyTransaction = `-- name: UpdatePartyTransaction :execrows
UPDATE party_transactions
SET tx_date = $2, amount = $3, description = $4, previous_balance = $5, final_balance = $6, updated_at = $7
WHERE id = $1
`

type UpdatePartyTransactionParams struct {
	ID              string             `json:"id"`
	TxDate          pgtype.Date        `json:"tx_date"`
	Amount          pgtype.Numeric     `json:"amount"`
	Description     string             `json:"description"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	FinalBalance    pgtype.Numeric     `json:"final_balance"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdatePartyTransaction(ctx context.Context, arg UpdatePartyTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, updatePartyTransaction,
		arg.ID,
		arg.TxDate,
		arg.Amount,
		arg.Description,
		arg.PreviousBalance,
		arg.FinalBalance,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
