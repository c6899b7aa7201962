package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyTxReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: TxReasonDeadlineExceeded},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: TxReasonDBLockTimeout},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: TxReasonSerializationFailure},
		{name: "unique_pg", err: &pgconn.PgError{Code: "23505"}, want: TxReasonUniqueViolation},
		{name: "unique_gorm", err: gorm.ErrDuplicatedKey, want: TxReasonUniqueViolation},
		{name: "business", err: errors.New("insufficient_stock"), want: TxReasonRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTxReason(tc.err))
		})
	}
}

func TestTxMetricsObserveCountsFailures(t *testing.T) {
	m := newTxMetrics(prometheus.NewRegistry(), Config{ServiceName: "vyapar", Environment: "test"})

	m.Observe(TxPaymentAccept, time.Now(), nil)
	m.Observe(TxPaymentAccept, time.Now(), errors.New("overpayment"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues(TxPaymentAccept, TxReasonRejected)))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newHTTPMetrics(prometheus.NewRegistry(), Config{})

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/ping", "2xx")))
}
