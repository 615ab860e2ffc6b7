package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal    *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	driverSkips   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	modelR2       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrolens_scans_total",
				Help: "Total number of driver scans executed",
			},
			[]string{"target"},
		),
		findingsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrolens_findings_total",
				Help: "Total number of driver findings produced by scans",
			},
			[]string{"target"},
		),
		driverSkips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrolens_driver_skips_total",
				Help: "Drivers skipped during scans, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrolens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrolens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		modelR2: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macrolens_model_r2",
				Help: "In-sample fit quality of the latest valuation model per target",
			},
			[]string{"target"},
		),
	}
}

// RecordScan records a completed driver scan.
func (r *Recorder) RecordScan(target string) {
	r.scansTotal.WithLabelValues(target).Inc()
}

// RecordFindings records the number of findings a scan produced.
func (r *Recorder) RecordFindings(target string, n int) {
	r.findingsTotal.WithLabelValues(target).Add(float64(n))
}

// RecordDriverSkip records a driver skipped during a scan.
func (r *Recorder) RecordDriverSkip(reason string) {
	r.driverSkips.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordModelR2 records the fit quality of the latest valuation model.
func (r *Recorder) RecordModelR2(target string, r2 float64) {
	r.modelR2.WithLabelValues(target).Set(r2)
}
