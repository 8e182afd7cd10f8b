package domain

import "time"

// Event types
const (
	EventTypeAccountCreated = "account.created"
	EventTypeEntryPosted    = "ledger.entry_posted"
	EventTypeEntryAmended   = "ledger.entry_amended"
	EventTypeEntryVoided    = "ledger.entry_voided"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeEntry   = "ledger_entry"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewEntryEventPayload builds the outbox payload for an entry and the
// account balance that resulted from the change.
func NewEntryEventPayload(e *Entry, accountBalance string) map[string]any {
	return map[string]any{
		"entry_id":        e.ID,
		"account_id":      e.AccountID,
		"kind":            string(e.Kind),
		"reference_no":    e.ReferenceNo,
		"tx_date":         e.TxDate.Format(DateLayout),
		"debit":           e.Debit.String(),
		"credit":          e.Credit.String(),
		"balance":         e.Balance.String(),
		"account_balance": accountBalance,
	}
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	PartyType string `json:"party_type"`
}
