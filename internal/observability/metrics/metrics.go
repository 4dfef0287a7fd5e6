package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "tren_"

// Recorder collects run metrics on its own registry so several runs in one
// process (tests) do not collide.
type Recorder struct {
	registry *prometheus.Registry

	records        *prometheus.CounterVec
	accounts       prometheus.Gauge
	frozenAccounts prometheus.Gauge
	runDuration    prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_total",
				Help: "Records processed by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "accounts",
			Help: "Accounts known at the end of the run",
		}),
		frozenAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "frozen_accounts",
			Help: "Accounts frozen by a chargeback",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_duration_seconds",
			Help:    "Wall time of a full run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	r.registry.MustRegister(r.records, r.accounts, r.frozenAccounts, r.runDuration)
	return r
}

// ObserveRecord counts one handled record. Safe on a nil Recorder.
func (r *Recorder) ObserveRecord(kind, outcome string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) ObserveRun(elapsed time.Duration, accounts, frozen int) {
	if r == nil {
		return
	}
	r.runDuration.Observe(elapsed.Seconds())
	r.accounts.Set(float64(accounts))
	r.frozenAccounts.Set(float64(frozen))
}

// WriteTextfile dumps the metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Counter exposes a records counter for assertions.
func (r *Recorder) Counter(kind, outcome string) prometheus.Counter {
	return r.records.WithLabelValues(kind, outcome)
}
