package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	outboxRepo   OutboxRepository
	transactions *TransactionUseCase
	idGen        IDGenerator
	clock        Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	transactions *TransactionUseCase,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		outboxRepo:   outboxRepo,
		transactions: transactions,
		idGen:        idGen,
		clock:        SystemClock(),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name      string
	PartyType domain.PartyType
	// OpeningBalance may be negative; it is posted as the first entry.
	OpeningBalance decimal.Decimal
	// OpeningDate defaults to the creation date.
	OpeningDate *time.Time
}

// CreateAccount creates a new account and posts its opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if !input.PartyType.IsValid() {
		return nil, domain.ErrInvalidPartyType
	}
	if err := domain.ValidateAmount(input.OpeningBalance.Abs()); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		PartyType: input.PartyType,
		Balance:   decimal.Zero,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": account.ID,
			"name":       account.Name,
			"party_type": account.PartyType.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if !input.OpeningBalance.IsZero() {
		openedOn := now
		if input.OpeningDate != nil {
			openedOn = *input.OpeningDate
		}

		_, err := uc.transactions.record(ctx, tx, account, RecordTransactionInput{
			AccountID:   account.ID,
			Kind:        domain.KindOpening,
			Date:        openedOn,
			Amount:      input.OpeningBalance,
			ReferenceNo: OpeningReference,
			Description: "Opening balance",
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	PartyType domain.PartyType
	Limit     int
	Offset    int
}

// ListAccounts lists the accounts of a party type with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if !input.PartyType.IsValid() {
		return nil, domain.ErrInvalidPartyType
	}

	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.List(ctx, input.PartyType, limit, offset)
}
