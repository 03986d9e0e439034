package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/repository/memory"
	"github.com/josh-kwaku/finance-tracker/internal/service"
	"github.com/josh-kwaku/finance-tracker/internal/service/balance"
)

func TestListTransactions(t *testing.T) {
	store := memory.New()
	owner := uuid.New()
	store.AddUser(domain.User{ID: owner, Status: domain.UserStatusActive})
	accounts := service.NewAccountService(store, store.Accounts(), store.Users(), time.Second)
	mutator := balance.NewService(store, time.Second)
	ctx := context.Background()

	acct, err := accounts.CreateAccount(ctx, service.CreateAccountRequest{
		OwnerID: owner, Name: domain.AccountNameCash, Number: "c", InitialBalance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	for _, desc := range []string{"Bread", "Milk", "Eggs"} {
		_, err := mutator.Debit(ctx, balance.DebitRequest{OwnerID: owner, AccountID: acct.ID, Description: desc, Amount: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	svc := service.NewTransactionService(store.Transactions())

	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantDescs []string
	}{
		{"default page", 0, 0, service.DefaultPageSize, []string{"Eggs", "Milk", "Bread", "Cash (Initial Deposit)"}},
		{"first two", 2, 0, 2, []string{"Eggs", "Milk"}},
		{"second page", 2, 2, 2, []string{"Bread", "Cash (Initial Deposit)"}},
		{"past the end", 2, 10, 2, nil},
		{"clamped limit", 1000, 0, service.MaxPageSize, []string{"Eggs", "Milk", "Bread", "Cash (Initial Deposit)"}},
		{"negative offset", 1, -5, 1, []string{"Eggs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListTransactions(ctx, owner, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, 4, page.Total)
			assert.Equal(t, tt.wantLimit, page.Limit)

			var descs []string
			for _, txn := range page.Transactions {
				descs = append(descs, txn.Description)
			}
			assert.Equal(t, tt.wantDescs, descs)
		})
	}
}

func TestListTransactions_OtherOwnerSeesNothing(t *testing.T) {
	store := memory.New()
	svc := service.NewTransactionService(store.Transactions())

	page, err := svc.ListTransactions(context.Background(), uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Transactions)
}
