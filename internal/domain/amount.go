package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits money values may carry.
const AmountScale = 2

// MaxAmount is the largest value a NUMERIC(18,2) balance or amount column
// can hold.
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

// ValidateAmount accepts strictly positive amounts with at most AmountScale
// fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero: %w", ErrInvalidAmount)
	}
	if !hasMoneyScale(amount) {
		return fmt.Errorf("amount has more than %d decimal places: %w", AmountScale, ErrInvalidAmount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount exceeds %s: %w", MaxAmount, ErrInvalidAmount)
	}
	return nil
}

// ValidateInitialBalance is ValidateAmount relaxed to allow zero.
func ValidateInitialBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("initial balance must not be negative: %w", ErrInvalidAmount)
	}
	if !hasMoneyScale(amount) {
		return fmt.Errorf("initial balance has more than %d decimal places: %w", AmountScale, ErrInvalidAmount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("initial balance exceeds %s: %w", MaxAmount, ErrInvalidAmount)
	}
	return nil
}

func hasMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountScale))
}
