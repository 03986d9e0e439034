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

type TransferRequest struct {
	OwnerID       uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
}

type TransferResult struct {
	From   *domain.Account
	To     *domain.Account
	Debit  *domain.Transaction
	Credit *domain.Transaction
}

// Transfer moves money between two accounts of the same owner. Both rows are
// locked for the whole unit of work; the two balance updates and the two log
// entries commit together.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (res *TransferResult, err error) {
	defer func() { metrics.ObserveOperation(metrics.OpTransfer, req.Amount, err) }()

	if err := validateTransfer(req); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	err = storage.WithTx(ctx, s.store, s.txTimeout, func(ctx context.Context, tx storage.Tx) error {
		locked, err := tx.LockAccounts(ctx, req.OwnerID, req.FromAccountID, req.ToAccountID)
		if err != nil {
			return err
		}
		from, to := locked[req.FromAccountID], locked[req.ToAccountID]

		if !domain.CanDebit(from, req.Amount) {
			return domain.ErrInsufficientFunds
		}

		res = &TransferResult{}
		if res.From, err = tx.AdjustBalance(ctx, req.OwnerID, from.ID, req.Amount.Neg()); err != nil {
			return fmt.Errorf("debit source: %w", err)
		}
		if res.To, err = tx.AdjustBalance(ctx, req.OwnerID, to.ID, req.Amount); err != nil {
			return fmt.Errorf("credit destination: %w", err)
		}

		now := s.now()
		res.Debit = domain.NewTransaction(req.OwnerID,
			fmt.Sprintf("Transfer to %s", to.Name),
			domain.TransactionTypeExpense, req.Amount, from.Name, now)
		res.Credit = domain.NewTransaction(req.OwnerID,
			fmt.Sprintf("Transfer from %s", from.Name),
			domain.TransactionTypeIncome, req.Amount, to.Name, now)

		if err := tx.AppendTransaction(ctx, res.Debit); err != nil {
			return fmt.Errorf("log debit: %w", err)
		}
		if err := tx.AppendTransaction(ctx, res.Credit); err != nil {
			return fmt.Errorf("log credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	logging.FromContext(ctx).Info("transfer completed",
		"from_account", req.FromAccountID,
		"to_account", req.ToAccountID,
		"amount", req.Amount,
	)
	return res, nil
}

func validateTransfer(req TransferRequest) error {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return err
	}
	if req.FromAccountID == req.ToAccountID {
		return domain.ErrSelfTransfer
	}
	return nil
}
