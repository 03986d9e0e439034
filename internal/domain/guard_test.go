package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		want    bool
	}{
		{name: "balance above amount", balance: "100.00", amount: "80.00", want: true},
		{name: "balance equals amount", balance: "80.00", amount: "80", want: true},
		{name: "balance below amount", balance: "79.99", amount: "80.00", want: false},
		{name: "empty account", balance: "0", amount: "0.01", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acct := &Account{Balance: decimal.RequireFromString(tc.balance)}
			assert.Equal(t, tc.want, CanDebit(acct, decimal.RequireFromString(tc.amount)))
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	existing := []Account{
		{ID: uuid.New(), OwnerID: owner, Name: AccountNameCash},
		{ID: uuid.New(), OwnerID: other, Name: AccountNamePaypal},
	}

	assert.True(t, IsDuplicate(owner, AccountNameCash, existing))
	assert.False(t, IsDuplicate(owner, AccountNamePaypal, existing), "same kind under another owner")
	assert.False(t, IsDuplicate(owner, AccountNameCrypto, existing))
	assert.False(t, IsDuplicate(owner, AccountNameCash, nil))
}

func TestAccountName_IsValid(t *testing.T) {
	for _, n := range AccountNames() {
		assert.True(t, n.IsValid(), n)
	}
	assert.False(t, AccountName("Savings").IsValid())
	assert.False(t, AccountName("cash").IsValid())
	assert.False(t, AccountName("").IsValid())
}
