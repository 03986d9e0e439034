package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

func TestObserveOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDebit, "ok"))
	failBefore := testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDebit, "insufficient_funds"))
	movedBefore := testutil.ToFloat64(moneyMovedTotal.WithLabelValues(OpDebit))

	ObserveOperation(OpDebit, decimal.RequireFromString("12.50"), nil)
	ObserveOperation(OpDebit, decimal.RequireFromString("99.00"), fmt.Errorf("Debit: %w", domain.ErrInsufficientFunds))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDebit, "ok")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDebit, "insufficient_funds")))
	assert.InDelta(t, movedBefore+12.5, testutil.ToFloat64(moneyMovedTotal.WithLabelValues(OpDebit)), 1e-9)
}

func TestObserveOperation_UnknownError(t *testing.T) {
	before := testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDeposit, "unknown"))
	ObserveOperation(OpDeposit, decimal.NewFromInt(1), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(moneyOperationsTotal.WithLabelValues(OpDeposit, "unknown")))
}
