package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidPartyType = errors.New("invalid party type")
	ErrVersionConflict  = errors.New("account was modified concurrently")

	// Entry errors
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrOneSidedEntry       = errors.New("exactly one of debit and credit must be non-zero")
	ErrInvalidKind         = errors.New("invalid entry kind")
	ErrKindNotAllowed      = errors.New("entry kind not allowed for party type")
	ErrDuplicateReference  = errors.New("reference already posted for account")
	ErrLedgerStoreMissing  = errors.New("ledger journal store does not exist")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Statement errors
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("date range start is after its end")
)
