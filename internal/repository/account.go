package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

const accountColumns = `id, owner_id, name, number, balance, created_at, updated_at`

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
	pqNumericOverflow = "22003"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	return r.listByOwner(ctx, r.db, ownerID)
}

func (r *AccountRepository) listByOwner(ctx context.Context, q querier, ownerID uuid.UUID) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY created_at`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwner: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByOwner: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) getByName(ctx context.Context, q querier, ownerID uuid.UUID, name domain.AccountName) (*domain.Account, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 AND name = $2`, ownerID, name,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("FindAccountByName: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("FindAccountByName: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.OwnerID, account.Name, account.Number,
		account.Balance, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return fmt.Errorf("Create: %w", domain.ErrDuplicateAccount)
		case pqNumericOverflow:
			return fmt.Errorf("Create: %w", domain.ErrInvalidAmount)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, ownerID, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// AdjustBalance adds delta to the balance in place. The balance >= 0 check
// constraint backs up the caller's funds check.
func (r *AccountRepository) AdjustBalance(ctx context.Context, tx *sql.Tx, ownerID, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND owner_id = $3
		RETURNING `+accountColumns,
		delta, id, ownerID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("AdjustBalance: %w", domain.ErrNotFound)
		}
		switch pqCode(err) {
		case pqCheckViolation:
			return nil, fmt.Errorf("AdjustBalance: %w", domain.ErrInsufficientFunds)
		case pqNumericOverflow:
			return nil, fmt.Errorf("AdjustBalance: balance would exceed %s: %w", domain.MaxAmount, domain.ErrInvalidAmount)
		}
		return nil, fmt.Errorf("AdjustBalance: %w", err)
	}
	return a, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Number,
		&a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
