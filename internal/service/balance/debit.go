package balance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/metrics"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type DebitRequest struct {
	OwnerID     uuid.UUID
	AccountID   uuid.UUID
	Description string
	Amount      decimal.Decimal
}

// Debit records an expense against an account. It never debits partially:
// a balance below the amount fails with domain.ErrInsufficientFunds.
func (s *Service) Debit(ctx context.Context, req DebitRequest) (txn *domain.Transaction, err error) {
	defer func() { metrics.ObserveOperation(metrics.OpDebit, req.Amount, err) }()

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("Debit: description is required: %w", domain.ErrInvalidInput)
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	err = storage.WithTx(ctx, s.store, s.txTimeout, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockAccounts(ctx, req.OwnerID, req.AccountID)
		if err != nil {
			return err
		}
		account := locked[req.AccountID]

		if !domain.CanDebit(account, req.Amount) {
			return domain.ErrInsufficientFunds
		}

		if _, err := tx.AdjustBalance(ctx, req.OwnerID, req.AccountID, req.Amount.Neg()); err != nil {
			return err
		}

		txn = domain.NewTransaction(
			req.OwnerID,
			description,
			domain.TransactionTypeExpense,
			req.Amount,
			account.Name,
			s.now(),
		)
		return tx.AppendTransaction(ctx, txn)
	})
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	logging.FromContext(ctx).Info("expense recorded",
		"account_id", req.AccountID,
		"transaction_id", txn.ID,
		"amount", req.Amount,
	)
	return txn, nil
}
