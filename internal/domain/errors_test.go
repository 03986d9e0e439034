package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "insufficient_funds", Kind(fmt.Errorf("Debit: %w", ErrInsufficientFunds)))
	assert.Equal(t, "invalid_input", Kind(ErrSelfTransfer))
	assert.Equal(t, "storage_failure", Kind(fmt.Errorf("%w: %w", ErrStorageFailure, errors.New("conn reset"))))
	assert.Equal(t, "unknown", Kind(errors.New("boom")))
}

func TestSelfTransferIsInvalidInput(t *testing.T) {
	assert.ErrorIs(t, ErrSelfTransfer, ErrInvalidInput)
	assert.True(t, IsKnown(ErrSelfTransfer))
	assert.False(t, IsKnown(errors.New("boom")))
}
