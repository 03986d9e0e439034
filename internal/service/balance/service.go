// Package balance moves money: deposits, expense debits and transfers
// between two accounts of one owner. Each operation is a single storage
// transaction that locks the affected rows, checks funds, updates balances
// and appends the matching transaction log entries, or changes nothing.
package balance

import (
	"time"

	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type Service struct {
	store     storage.Store
	txTimeout time.Duration
	now       func() time.Time
}

func NewService(store storage.Store, txTimeout time.Duration) *Service {
	return &Service{
		store:     store,
		txTimeout: txTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}
