package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type TransactionPage struct {
	Transactions []domain.Transaction
	Total        int
	Limit        int
	Offset       int
}

type TransactionService struct {
	transactions transactionReader
}

func NewTransactionService(transactions transactionReader) *TransactionService {
	return &TransactionService{transactions: transactions}
}

// ListTransactions returns the owner's log newest first. Out-of-range limits
// are clamped rather than rejected.
func (s *TransactionService) ListTransactions(ctx context.Context, ownerID uuid.UUID, limit, offset int) (*TransactionPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	txns, total, err := s.transactions.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return &TransactionPage{Transactions: txns, Total: total, Limit: limit, Offset: offset}, nil
}
