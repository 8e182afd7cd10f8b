package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// OpeningReference is the reference number of the opening balance entry.
	OpeningReference = "OPENING"
)

// Posting operations reported to the Observer.
const (
	OpPost  = "post"
	OpAmend = "amend"
	OpVoid  = "void"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

type nopObserver struct{}

func (nopObserver) ObservePosting(string, time.Duration, error) {}
func (nopObserver) ObserveStatement(domain.StatementSource, int) {}
func (nopObserver) ObserveDrift(string, decimal.Decimal) {}
