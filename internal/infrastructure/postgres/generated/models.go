package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	PartyType string             `json:"party_type"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type LedgerEntry struct {
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

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type PartyTransaction struct {
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
