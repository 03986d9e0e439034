package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxTimeouts bound how long a unit of work may wait on row locks and on any
// single statement. Zero leaves the server default in place.
type TxTimeouts struct {
	Lock      time.Duration
	Statement time.Duration
}

// DB is the Postgres-backed storage.Store.
type DB struct {
	pool         *sql.DB
	timeouts     TxTimeouts
	accounts     *AccountRepository
	transactions *TransactionRepository
}

func NewDB(pool *sql.DB, timeouts TxTimeouts) *DB {
	return &DB{
		pool:         pool,
		timeouts:     timeouts,
		accounts:     NewAccountRepository(pool),
		transactions: NewTransactionRepository(pool),
	}
}

func (d *DB) Conn() *sql.DB {
	return d.pool
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

func (d *DB) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Begin: %w", err)
	}

	if d.timeouts.Lock > 0 || d.timeouts.Statement > 0 {
		_, err = tx.ExecContext(ctx,
			`SELECT set_config('lock_timeout', $1, true), set_config('statement_timeout', $2, true)`,
			millis(d.timeouts.Lock), millis(d.timeouts.Statement),
		)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("Begin: set timeouts: %w", err)
		}
	}

	return &pgTx{tx: tx, accounts: d.accounts, transactions: d.transactions}, nil
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

var _ storage.Store = (*DB)(nil)

// pgTx adapts the repositories to storage.Tx over a single *sql.Tx.
type pgTx struct {
	tx           *sql.Tx
	accounts     *AccountRepository
	transactions *TransactionRepository
}

func (t *pgTx) LockAccounts(ctx context.Context, ownerID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	locked := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range storage.LockOrder(ids) {
		a, err := t.accounts.GetForUpdate(ctx, t.tx, ownerID, id)
		if err != nil {
			return nil, fmt.Errorf("LockAccounts: %w", err)
		}
		locked[id] = a
	}
	return locked, nil
}

func (t *pgTx) FindAccountByName(ctx context.Context, ownerID uuid.UUID, name domain.AccountName) (*domain.Account, error) {
	return t.accounts.getByName(ctx, t.tx, ownerID, name)
}

func (t *pgTx) AccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	return t.accounts.listByOwner(ctx, t.tx, ownerID)
}

func (t *pgTx) InsertAccount(ctx context.Context, account *domain.Account) error {
	return t.accounts.Create(ctx, t.tx, account)
}

func (t *pgTx) AdjustBalance(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	return t.accounts.AdjustBalance(ctx, t.tx, ownerID, accountID, delta)
}

func (t *pgTx) AppendTransaction(ctx context.Context, txn *domain.Transaction) error {
	return t.transactions.Create(ctx, t.tx, txn)
}

func (t *pgTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
