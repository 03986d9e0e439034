package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/metrics"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type CreateAccountRequest struct {
	OwnerID        uuid.UUID
	Name           domain.AccountName
	Number         string
	InitialBalance decimal.Decimal
}

type AccountService struct {
	store     storage.Store
	accounts  accountReader
	users     userRepository
	txTimeout time.Duration
}

func NewAccountService(store storage.Store, accounts accountReader, users userRepository, txTimeout time.Duration) *AccountService {
	return &AccountService{store: store, accounts: accounts, users: users, txTimeout: txTimeout}
}

// CreateAccount activates an account kind for the owner. A positive initial
// balance is recorded as an income transaction in the same unit of work.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (acct *domain.Account, err error) {
	defer func() { metrics.ObserveOperation(metrics.OpCreateAccount, req.InitialBalance, err) }()

	if err := validateCreateAccount(req); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	if _, err := s.users.GetByID(ctx, req.OwnerID); err != nil {
		if !domain.IsKnown(err) {
			err = fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
		}
		return nil, fmt.Errorf("CreateAccount: owner: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.New(),
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		Number:    strings.TrimSpace(req.Number),
		Balance:   req.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = storage.WithTx(ctx, s.store, s.txTimeout, func(ctx context.Context, tx storage.Tx) error {
		existing, err := tx.AccountsByOwner(ctx, req.OwnerID)
		if err != nil {
			return err
		}
		if domain.IsDuplicate(req.OwnerID, req.Name, existing) {
			return domain.ErrDuplicateAccount
		}

		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}

		if !req.InitialBalance.IsPositive() {
			return nil
		}
		initial := domain.NewTransaction(
			req.OwnerID,
			fmt.Sprintf("%s (Initial Deposit)", req.Name),
			domain.TransactionTypeIncome,
			req.InitialBalance,
			req.Name,
			now,
		)
		return tx.AppendTransaction(ctx, initial)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account created",
		"account_id", account.ID,
		"owner_id", account.OwnerID,
		"name", account.Name,
		"initial_balance", account.Balance,
	)

	return account, nil
}

func validateCreateAccount(req CreateAccountRequest) error {
	if !req.Name.IsValid() {
		return fmt.Errorf("unknown account name %q: %w", req.Name, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Number) == "" {
		return fmt.Errorf("account number is required: %w", domain.ErrInvalidInput)
	}
	return domain.ValidateInitialBalance(req.InitialBalance)
}

func (s *AccountService) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, ownerID, accountID)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}
