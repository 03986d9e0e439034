package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type TransactionStatus string

// TransactionStatusCompleted is the only status the balance core writes.
const TransactionStatusCompleted TransactionStatus = "Completed"

// Transaction is an immutable log entry. Source holds the account name at
// the time of recording and is kept for display only.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Description string
	Type        TransactionType
	Status      TransactionStatus
	Amount      decimal.Decimal
	Source      AccountName
	CreatedAt   time.Time
}

func NewTransaction(ownerID uuid.UUID, description string, typ TransactionType, amount decimal.Decimal, source AccountName, at time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: description,
		Type:        typ,
		Status:      TransactionStatusCompleted,
		Amount:      amount,
		Source:      source,
		CreatedAt:   at,
	}
}
