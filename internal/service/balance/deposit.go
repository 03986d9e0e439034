package balance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/metrics"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type DepositRequest struct {
	OwnerID   uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// Deposit adds money to an account and records it as income.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (acct *domain.Account, err error) {
	defer func() { metrics.ObserveOperation(metrics.OpDeposit, req.Amount, err) }()

	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	err = storage.WithTx(ctx, s.store, s.txTimeout, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockAccounts(ctx, req.OwnerID, req.AccountID)
		if err != nil {
			return err
		}
		account := locked[req.AccountID]

		acct, err = tx.AdjustBalance(ctx, req.OwnerID, req.AccountID, req.Amount)
		if err != nil {
			return err
		}

		return tx.AppendTransaction(ctx, domain.NewTransaction(
			req.OwnerID,
			fmt.Sprintf("%s (Deposit)", account.Name),
			domain.TransactionTypeIncome,
			req.Amount,
			account.Name,
			s.now(),
		))
	})
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit completed",
		"account_id", acct.ID,
		"amount", req.Amount,
		"balance", acct.Balance,
	)
	return acct, nil
}
