package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateAccount  = errors.New("account already exists for this owner")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStorageFailure    = errors.New("storage failure")

	ErrSelfTransfer = fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidInput)
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInvalidInput, "invalid_input"},
	{ErrNotFound, "not_found"},
	{ErrDuplicateAccount, "duplicate_account"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrStorageFailure, "storage_failure"},
}

// IsKnown reports whether err carries one of the error kinds above.
func IsKnown(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return true
		}
	}
	return false
}

// Kind returns a stable label for err, "ok" for nil and "unknown" for errors
// outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
