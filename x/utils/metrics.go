package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a decorator counting and timing every delivered transaction.
// Checks are not measured.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ custody.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator with collectors registered on
// given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_operations_total",
			Help: "Number of delivered operations by message path and result code.",
		}, []string{"path", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custody_operation_duration_seconds",
			Help:    "Time spent delivering an operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

// Check passes the transaction down the stack.
func (m *Metrics) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

// Deliver records the outcome and duration of the transaction. The result
// label is "ok" or the code of the returned error.
func (m *Metrics) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)

	path := msgPath(tx)
	m.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = strconv.FormatUint(uint64(errors.Code(err)), 10)
	}
	m.operations.WithLabelValues(path, result).Inc()
	return res, err
}
