package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/config"
	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/repository"
	"github.com/josh-kwaku/finance-tracker/internal/repository/memory"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type accountReader interface {
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
}

type userReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type transactionReader interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
}

type idempotencyStore interface {
	Get(ctx context.Context, key string, ownerID uuid.UUID) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
	CleanExpired(ctx context.Context) (int64, error)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// backend is everything the services need from one storage implementation.
type backend struct {
	store        storage.Store
	accounts     accountReader
	users        userReader
	transactions transactionReader
	idempotency  idempotencyStore
	pinger       pinger
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, func(), error) {
	if cfg.StorageBackend == config.BackendMemory {
		m := memory.New(memory.WithAutoProvisionedOwners())
		return &backend{
			store:        m,
			accounts:     m.Accounts(),
			users:        m.Users(),
			transactions: m.Transactions(),
			idempotency:  m.Idempotency(),
			pinger:       m,
		}, func() {}, nil
	}

	pool, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		PingAttempts:    cfg.DBPingAttempts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("openBackend: %w", err)
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("openBackend: %w", err)
	}

	db := repository.NewDB(pool, repository.TxTimeouts{
		Lock:      cfg.DBLockTimeout,
		Statement: cfg.DBStatementTimeout,
	})
	return &backend{
		store:        db,
		accounts:     repository.NewAccountRepository(pool),
		users:        repository.NewUserRepository(pool),
		transactions: repository.NewTransactionRepository(pool),
		idempotency:  repository.NewIdempotencyRepository(pool),
		pinger:       db,
	}, func() { pool.Close() }, nil
}
