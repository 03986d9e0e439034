package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountName is the kind of account a user can activate. Each kind may be
// activated at most once per owner.
type AccountName string

const (
	AccountNameCash       AccountName = "Cash"
	AccountNameCrypto     AccountName = "Crypto"
	AccountNamePaypal     AccountName = "Paypal"
	AccountNameVisaDebit  AccountName = "Visa Debit Card"
	AccountNameMastercard AccountName = "Mastercard"
)

var accountNames = []AccountName{
	AccountNameCash,
	AccountNameCrypto,
	AccountNamePaypal,
	AccountNameVisaDebit,
	AccountNameMastercard,
}

func AccountNames() []AccountName {
	out := make([]AccountName, len(accountNames))
	copy(out, accountNames)
	return out
}

func (n AccountName) IsValid() bool {
	for _, v := range accountNames {
		if n == v {
			return true
		}
	}
	return false
}

type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      AccountName
	Number    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
