package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type tx struct {
	s        *Store
	held     map[uuid.UUID]struct{}
	order    []uuid.UUID
	staged   map[uuid.UUID]domain.Account
	fresh    map[uuid.UUID]struct{}
	appended []domain.Transaction
	done     bool
}

func (t *tx) lock(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	select {
	case t.s.rowLock(id) <- struct{}{}:
	case <-ctx.Done():
		return lockWaitError(id, ctx.Err())
	}
	t.held[id] = struct{}{}
	t.order = append(t.order, id)
	return nil
}

func (t *tx) release() {
	for _, id := range slices.Backward(t.order) {
		<-t.s.rowLock(id)
	}
	t.held = nil
	t.order = nil
}

func (t *tx) current(id uuid.UUID) (domain.Account, bool) {
	if a, ok := t.staged[id]; ok {
		return a, true
	}
	return t.s.committed(id)
}

func (t *tx) LockAccounts(ctx context.Context, ownerID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	if t.done {
		return nil, errTxDone
	}
	locked := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range storage.LockOrder(ids) {
		if a, ok := t.current(id); !ok || a.OwnerID != ownerID {
			return nil, fmt.Errorf("LockAccounts: %w", domain.ErrNotFound)
		}
		if err := t.lock(ctx, id); err != nil {
			return nil, fmt.Errorf("LockAccounts: %w", err)
		}
		a, _ := t.current(id)
		locked[id] = &a
	}
	return locked, nil
}

func (t *tx) AccountsByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	if t.done {
		return nil, errTxDone
	}
	var out []domain.Account
	for _, a := range t.s.committedByOwner(ownerID) {
		if staged, ok := t.staged[a.ID]; ok {
			a = staged
		}
		out = append(out, a)
	}
	for id := range t.fresh {
		if a := t.staged[id]; a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (t *tx) FindAccountByName(ctx context.Context, ownerID uuid.UUID, name domain.AccountName) (*domain.Account, error) {
	accounts, err := t.AccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("FindAccountByName: %w", err)
	}
	for i := range accounts {
		if accounts[i].Name == name {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("FindAccountByName: %w", domain.ErrNotFound)
}

// InsertAccount fails straight away on a visible duplicate. A concurrent
// insert of the same (owner, name) is caught again at commit.
func (t *tx) InsertAccount(ctx context.Context, account *domain.Account) error {
	existing, err := t.AccountsByOwner(ctx, account.OwnerID)
	if err != nil {
		return fmt.Errorf("InsertAccount: %w", err)
	}
	if domain.IsDuplicate(account.OwnerID, account.Name, existing) {
		return fmt.Errorf("InsertAccount: %w", domain.ErrDuplicateAccount)
	}
	if _, ok := t.s.committed(account.ID); ok {
		return fmt.Errorf("InsertAccount: id %s already taken", account.ID)
	}
	if err := t.lock(ctx, account.ID); err != nil {
		return fmt.Errorf("InsertAccount: %w", err)
	}
	t.staged[account.ID] = *account
	t.fresh[account.ID] = struct{}{}
	return nil
}

func (t *tx) AdjustBalance(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	if t.done {
		return nil, errTxDone
	}
	if a, ok := t.current(accountID); !ok || a.OwnerID != ownerID {
		return nil, fmt.Errorf("AdjustBalance: %w", domain.ErrNotFound)
	}
	if err := t.lock(ctx, accountID); err != nil {
		return nil, fmt.Errorf("AdjustBalance: %w", err)
	}

	a, _ := t.current(accountID)
	balance := a.Balance.Add(delta)
	if balance.IsNegative() {
		return nil, fmt.Errorf("AdjustBalance: %w", domain.ErrInsufficientFunds)
	}
	if balance.GreaterThan(domain.MaxAmount) {
		return nil, fmt.Errorf("AdjustBalance: balance would exceed %s: %w", domain.MaxAmount, domain.ErrInvalidAmount)
	}
	a.Balance = balance
	a.UpdatedAt = t.s.now()
	t.staged[accountID] = a
	return &a, nil
}

func (t *tx) AppendTransaction(_ context.Context, txn *domain.Transaction) error {
	if t.done {
		return errTxDone
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("AppendTransaction: %w", domain.ErrInvalidAmount)
	}
	t.appended = append(t.appended, *txn)
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	defer t.finish()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.fresh {
		a := t.staged[id]
		for _, other := range t.s.accounts {
			if other.OwnerID == a.OwnerID && other.Name == a.Name {
				return fmt.Errorf("Commit: %w", domain.ErrDuplicateAccount)
			}
		}
	}
	for id, a := range t.staged {
		t.s.accounts[id] = a
	}
	t.s.transactions = append(t.s.transactions, t.appended...)
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *tx) finish() {
	t.done = true
	t.release()
	t.staged = nil
	t.fresh = nil
	t.appended = nil
}
