package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CanDebit reports whether the account can give up amount without its
// balance dropping below zero.
func CanDebit(account *Account, amount decimal.Decimal) bool {
	return account.Balance.GreaterThanOrEqual(amount)
}

// IsDuplicate reports whether ownerID already holds an account of kind name.
func IsDuplicate(ownerID uuid.UUID, name AccountName, existing []Account) bool {
	for i := range existing {
		if existing[i].OwnerID == ownerID && existing[i].Name == name {
			return true
		}
	}
	return false
}
