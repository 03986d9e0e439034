package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

type userRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type accountReader interface {
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
}

type transactionReader interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
}

type expiredEntryCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}
