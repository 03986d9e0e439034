package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/repository"
	"github.com/josh-kwaku/finance-tracker/internal/service"
	"github.com/josh-kwaku/finance-tracker/internal/service/balance"
	"github.com/josh-kwaku/finance-tracker/internal/testutil"
)

var pgTimeouts = repository.TxTimeouts{Lock: 5 * time.Second, Statement: 10 * time.Second}

func TestPostgres_TransferHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := balance.NewService(repository.NewDB(db, pgTimeouts), 10*time.Second)
	ctx := context.Background()

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	cash := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "100.00")
	paypal := testutil.SeedAccount(t, db, owner.ID, domain.AccountNamePaypal, "50.00")

	res, err := svc.Transfer(ctx, balance.TransferRequest{
		OwnerID: owner.ID, FromAccountID: cash.ID, ToAccountID: paypal.ID, Amount: decimal.NewFromInt(30),
	})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(res.From.Balance))
	assert.True(t, decimal.NewFromInt(70).Equal(testutil.GetAccountBalance(t, db, cash.ID)))
	assert.True(t, decimal.NewFromInt(80).Equal(testutil.GetAccountBalance(t, db, paypal.ID)))
	assert.Equal(t, 2, testutil.CountTransactions(t, db, owner.ID))

	txns, total, err := repository.NewTransactionRepository(db).ListByOwner(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
		assert.True(t, decimal.NewFromInt(30).Equal(txn.Amount))
	}
}

func TestPostgres_InsufficientFundsLeavesNoTrace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := balance.NewService(repository.NewDB(db, pgTimeouts), 10*time.Second)

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	cash := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "10.00")
	crypto := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCrypto, "0")

	_, err := svc.Transfer(context.Background(), balance.TransferRequest{
		OwnerID: owner.ID, FromAccountID: cash.ID, ToAccountID: crypto.ID, Amount: decimal.RequireFromString("10.01"),
	})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, decimal.NewFromInt(10).Equal(testutil.GetAccountBalance(t, db, cash.ID)))
	assert.True(t, testutil.GetAccountBalance(t, db, crypto.ID).IsZero())
	assert.Zero(t, testutil.CountTransactions(t, db, owner.ID))
}

func TestPostgres_ConcurrentDebitsOnlyOneWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := balance.NewService(repository.NewDB(db, pgTimeouts), 10*time.Second)

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	cash := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "100.00")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit(context.Background(), balance.DebitRequest{
				OwnerID: owner.ID, AccountID: cash.ID, Description: "Laptop", Amount: decimal.NewFromInt(80),
			})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientFunds):
			short++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.True(t, decimal.NewFromInt(20).Equal(testutil.GetAccountBalance(t, db, cash.ID)))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, owner.ID))
}

func TestPostgres_OppositeTransfersDoNotDeadlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := balance.NewService(repository.NewDB(db, pgTimeouts), 10*time.Second)

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	a := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "500.00")
	b := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameVisaDebit, "500.00")

	var wg sync.WaitGroup
	for i := range 20 {
		from, to := a.ID, b.ID
		if i%2 == 1 {
			from, to = b.ID, a.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), balance.TransferRequest{
				OwnerID: owner.ID, FromAccountID: from, ToAccountID: to, Amount: decimal.NewFromInt(5),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total := testutil.GetAccountBalance(t, db, a.ID).Add(testutil.GetAccountBalance(t, db, b.ID))
	assert.True(t, decimal.NewFromInt(1000).Equal(total))
	assert.Equal(t, 40, testutil.CountTransactions(t, db, owner.ID))
}

func TestPostgres_CreateAccountDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewDB(db, pgTimeouts)
	svc := service.NewAccountService(store, repository.NewAccountRepository(db), repository.NewUserRepository(db), 10*time.Second)
	ctx := context.Background()

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")

	acct, err := svc.CreateAccount(ctx, service.CreateAccountRequest{
		OwnerID: owner.ID, Name: domain.AccountNameMastercard, Number: "5500", InitialBalance: decimal.RequireFromString("12.34"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.34").Equal(testutil.GetAccountBalance(t, db, acct.ID)))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, owner.ID))

	_, err = svc.CreateAccount(ctx, service.CreateAccountRequest{
		OwnerID: owner.ID, Name: domain.AccountNameMastercard, Number: "5501",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateAccount)
	assert.Equal(t, 1, testutil.CountTransactions(t, db, owner.ID))
}

func TestPostgres_IdempotencyCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")

	now := time.Now().UTC()
	live := &repository.IdempotencyCacheEntry{
		Key: "k1", OwnerID: owner.ID, RequestHash: "h", StatusCode: 201,
		ResponseBody: []byte(`{"success":true}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	stale := &repository.IdempotencyCacheEntry{
		Key: "k2", OwnerID: owner.ID, RequestHash: "h", StatusCode: 201,
		ResponseBody: []byte(`{}`), CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, repo.Set(ctx, live))
	require.NoError(t, repo.Set(ctx, stale))

	got, err := repo.Get(ctx, "k1", owner.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.StatusCode)

	got, err = repo.Get(ctx, "k2", owner.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgres_FindAccountByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewDB(db, pgTimeouts)
	ctx := context.Background()

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	other := testutil.SeedOwner(t, db, "other@test.com", "Other")
	cash := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "42.00")

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	found, err := tx.FindAccountByName(ctx, owner.ID, domain.AccountNameCash)
	require.NoError(t, err)
	assert.Equal(t, cash.ID, found.ID)
	assert.True(t, decimal.NewFromInt(42).Equal(found.Balance))

	_, err = tx.FindAccountByName(ctx, owner.ID, domain.AccountNameCrypto)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tx.FindAccountByName(ctx, other.ID, domain.AccountNameCash)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_DepositPastColumnLimitIsInvalidAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := balance.NewService(repository.NewDB(db, pgTimeouts), 10*time.Second)

	owner := testutil.SeedOwner(t, db, "owner@test.com", "Owner")
	cash := testutil.SeedAccount(t, db, owner.ID, domain.AccountNameCash, "9999999999999999.00")

	_, err := svc.Deposit(context.Background(), balance.DepositRequest{
		OwnerID: owner.ID, AccountID: cash.ID, Amount: decimal.NewFromInt(1),
	})

	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, decimal.RequireFromString("9999999999999999.00").Equal(testutil.GetAccountBalance(t, db, cash.ID)))
	assert.Zero(t, testutil.CountTransactions(t, db, owner.ID))
}
