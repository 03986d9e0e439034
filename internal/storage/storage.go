// Package storage defines the transactional contract the balance core runs
// against. Every money movement is one Tx: rows that will change are locked
// through LockAccounts, checked, written and committed together.
package storage

import (
	"bytes"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work. Implementations must make Rollback safe to call
// after Commit and more than once.
type Tx interface {
	// LockAccounts returns the requested accounts of ownerID, each held under
	// an exclusive lock until Commit or Rollback. Locks are taken in
	// ascending id order. A missing or foreign id yields domain.ErrNotFound.
	LockAccounts(ctx context.Context, ownerID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error)
	FindAccountByName(ctx context.Context, ownerID uuid.UUID, name domain.AccountName) (*domain.Account, error)
	AccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
	InsertAccount(ctx context.Context, account *domain.Account) error
	AdjustBalance(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error)
	AppendTransaction(ctx context.Context, t *domain.Transaction) error
	Commit() error
	Rollback() error
}

// LockOrder returns ids deduplicated and sorted ascending by their bytes,
// which is also the order Postgres compares uuid columns in.
func LockOrder(ids []uuid.UUID) []uuid.UUID {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(sorted)
}
