package prometheus

import (
	"errors"
	"time"

	"github.com/cubbit/localfs/pkg/localfs"
	"github.com/cubbit/localfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics is the Prometheus implementation of localfs.Metrics.
//
// This implementation collects metrics about store operations including:
//   - Operation counts (upload, append, download, list, info, copy, move, delete)
//   - Operation latency
//   - Bytes transferred
//   - Error rates by kind
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	keysProcessed     *prometheus.CounterVec
}

// NewStoreMetrics creates a new Prometheus-backed localfs.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the store to fall back to its built-in no-op implementation.
func NewStoreMetrics() localfs.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "localfs_operations_total",
				Help: "Total number of store operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "localfs_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "localfs_bytes_transferred_total",
				Help: "Total bytes transferred by upload/append/download operations",
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "localfs_errors_total",
				Help: "Total number of failed operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		keysProcessed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "localfs_batch_keys_total",
				Help: "Total number of keys processed by copy/move/delete operations, single-key and batch",
			},
			[]string{"operation"},
		),
	}
}

func (m *storeMetrics) observe(operation string, size int64, dur time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(operation, errorKind(err)).Inc()
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(dur.Seconds())
	if size > 0 {
		m.bytesTransferred.WithLabelValues(operation).Add(float64(size))
	}
}

func (m *storeMetrics) ObserveUpload(size int64, dur time.Duration, err error) {
	m.observe("upload", size, dur, err)
}

func (m *storeMetrics) ObserveAppendBegin(dur time.Duration, err error) {
	m.observe("append_begin", 0, dur, err)
}

func (m *storeMetrics) ObserveAppendFinish(size int64, dur time.Duration, err error) {
	m.observe("append_finish", size, dur, err)
}

func (m *storeMetrics) ObserveDownload(size int64, dur time.Duration, err error) {
	m.observe("download", size, dur, err)
}

func (m *storeMetrics) ObserveList(matched int, dur time.Duration, err error) {
	m.observe("list", 0, dur, err)
}

func (m *storeMetrics) ObserveInfo(dur time.Duration, err error) {
	m.observe("info", 0, dur, err)
}

func (m *storeMetrics) ObserveCopy(keys int, dur time.Duration, err error) {
	m.keysProcessed.WithLabelValues("copy").Add(float64(keys))
	m.observe("copy", 0, dur, err)
}

func (m *storeMetrics) ObserveMove(keys int, dur time.Duration, err error) {
	m.keysProcessed.WithLabelValues("move").Add(float64(keys))
	m.observe("move", 0, dur, err)
}

func (m *storeMetrics) ObserveDelete(keys int, dur time.Duration, err error) {
	m.keysProcessed.WithLabelValues("delete").Add(float64(keys))
	m.observe("delete", 0, dur, err)
}

// errorKind extracts a stable, low-cardinality label from a localfs error,
// falling back to "unknown" for anything that isn't the closed *localfs.Error
// taxonomy (which should never happen for errors the store itself returns).
func errorKind(err error) string {
	var domainErr *localfs.Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind.String()
	}
	var batchErr *localfs.BatchError
	if errors.As(err, &batchErr) {
		return "BatchError"
	}
	return "unknown"
}

var _ localfs.Metrics = (*storeMetrics)(nil)
