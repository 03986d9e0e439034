package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
)

const namespace = "finance_tracker"

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	moneyOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "money_operations_total",
			Help:      "Balance mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	moneyMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "money_moved_total",
			Help:      "Sum of committed amounts by operation",
		},
		[]string{"operation"},
	)

	panicsRecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Handler panics caught by the recovery middleware",
		},
	)
)

// Operation names used as the operation label.
const (
	OpCreateAccount = "create_account"
	OpDeposit       = "deposit"
	OpDebit         = "debit"
	OpTransfer      = "transfer"
)

// ObserveOperation counts one finished balance mutation. The amount is only
// added to money_moved_total when err is nil.
func ObserveOperation(op string, amount decimal.Decimal, err error) {
	moneyOperationsTotal.WithLabelValues(op, domain.Kind(err)).Inc()
	if err == nil {
		moneyMovedTotal.WithLabelValues(op).Add(amount.InexactFloat64())
	}
}

func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	httpRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
}

func PanicRecovered() {
	panicsRecoveredTotal.Inc()
}
