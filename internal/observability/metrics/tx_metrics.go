package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	TxReasonDeadlineExceeded     = "deadline_exceeded"
	TxReasonDBLockTimeout        = "db_lock_timeout"
	TxReasonSerializationFailure = "serialization_failure"
	TxReasonUniqueViolation      = "unique_violation"
	TxReasonRejected             = "rejected"
)

const (
	TxInvoiceCreate    = "invoice_create"
	TxInvoiceCancel    = "invoice_cancel"
	TxPurchaseCreate   = "purchase_create"
	TxProductionCreate = "production_create"
	TxPaymentAccept    = "payment_accept"
	TxStockAdjust      = "stock_adjust"
)

// TxMetrics tracks latency and failures of the stock and money mutators.
type TxMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewTxMetrics registers the transaction collectors on the default registry.
func NewTxMetrics(cfg Config) *TxMetrics {
	return newTxMetrics(prometheus.DefaultRegisterer, cfg)
}

func newTxMetrics(registerer prometheus.Registerer, cfg Config) *TxMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "vyapar_tx_duration_seconds",
		Help:        "Duration of stock and settlement transactions.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"operation"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "vyapar_tx_failures_total",
		Help:        "Rolled back stock and settlement transactions by reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})

	registerer.MustRegister(duration, failures)

	return &TxMetrics{duration: duration, failures: failures}
}

// Observe records one finished transaction. A nil err counts as success.
func (m *TxMetrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(operation, ClassifyTxReason(err)).Inc()
	}
}

// ClassifyTxReason maps an error to a low-cardinality reason label.
func ClassifyTxReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TxReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return TxReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return TxReasonDBLockTimeout
		case "40001", "40P01":
			return TxReasonSerializationFailure
		case "23505":
			return TxReasonUniqueViolation
		}
	}
	return TxReasonRejected
}
