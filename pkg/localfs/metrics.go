package localfs

import "time"

// Metrics is the observability seam every Store operation reports through.
// It is intentionally narrow and opaque: the core package never depends on
// a metrics backend directly, matching the separation between the content
// store and its metrics collaborator in the teacher's store/content
// packages. A concrete Prometheus-backed implementation lives in
// pkg/metrics/prometheus.
//
// Every method must tolerate being called concurrently from several
// goroutines (callers' goroutines and the streaming goroutines of
// uploads, appends and downloads).
type Metrics interface {
	// ObserveUpload records a completed (or failed) upload of size bytes
	// taking dur, for the fixed-size and streaming upload paths alike.
	ObserveUpload(size int64, dur time.Duration, err error)
	// ObserveAppendBegin records the latency of resolving/opening an
	// append target, kept distinct from ObserveUpload's begin phase.
	ObserveAppendBegin(dur time.Duration, err error)
	// ObserveAppendFinish records a completed (or failed) append of size
	// bytes, kept distinct from the upload finish counters.
	ObserveAppendFinish(size int64, dur time.Duration, err error)
	// ObserveDownload records a completed (or failed) download of size
	// bytes taking dur.
	ObserveDownload(size int64, dur time.Duration, err error)
	// ObserveList records a completed (or failed) list call returning
	// matched entries.
	ObserveList(matched int, dur time.Duration, err error)
	// ObserveInfo records a completed (or failed) info/info_all call.
	ObserveInfo(dur time.Duration, err error)
	// ObserveCopy records a completed (or failed) copy/copy_all call
	// covering keys entries.
	ObserveCopy(keys int, dur time.Duration, err error)
	// ObserveMove records a completed (or failed) move/move_all call
	// covering keys entries.
	ObserveMove(keys int, dur time.Duration, err error)
	// ObserveDelete records a completed (or failed) delete/delete_all call
	// covering keys entries.
	ObserveDelete(keys int, dur time.Duration, err error)
}

// noopMetrics discards every observation, the default collaborator a Store
// uses when no Metrics implementation is supplied via WithMetrics, mirroring
// the nil-safe noopMetrics used by the teacher's S3 content store.
type noopMetrics struct{}

func (noopMetrics) ObserveUpload(int64, time.Duration, error)       {}
func (noopMetrics) ObserveAppendBegin(time.Duration, error)         {}
func (noopMetrics) ObserveAppendFinish(int64, time.Duration, error) {}
func (noopMetrics) ObserveDownload(int64, time.Duration, error)     {}
func (noopMetrics) ObserveList(int, time.Duration, error)           {}
func (noopMetrics) ObserveInfo(time.Duration, error)                {}
func (noopMetrics) ObserveCopy(int, time.Duration, error)           {}
func (noopMetrics) ObserveMove(int, time.Duration, error)           {}
func (noopMetrics) ObserveDelete(int, time.Duration, error)         {}

var _ Metrics = noopMetrics{}
