// Package metrics exposes Prometheus collectors for the indexnow commands.
//
// The commands are one-shot processes, so nothing is scraped: when a textfile
// path is configured the default registry is written there on exit for the
// node_exporter textfile collector to pick up.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Keygen outcomes.
const (
	KeygenExisting = "existing"
	KeygenCreated  = "created"
	KeygenFailed   = "failed"
)

var (
	keygenTotal          *prometheus.CounterVec
	urlsDiscovered       prometheus.Gauge
	urlsSubmittedTotal   prometheus.Counter
	batchesTotal         *prometheus.CounterVec
	batchDurationSeconds prometheus.Histogram
	lastRunTimestamp     *prometheus.GaugeVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		keygenTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexnow_keygen_total",
				Help: "Key provisioning runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		urlsDiscovered = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexnow_urls_discovered",
				Help: "Number of URLs derived from the video data on the last run.",
			},
		)

		urlsSubmittedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "indexnow_urls_submitted_total",
				Help: "Total number of URLs sent in accepted IndexNow batches.",
			},
		)

		batchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexnow_batches_total",
				Help: "Total number of IndexNow batches, labeled by status.",
			},
			[]string{"status"},
		)

		batchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "indexnow_batch_duration_seconds",
				Help:    "Histogram of IndexNow batch submission latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		lastRunTimestamp = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexnow_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run, labeled by command.",
			},
			[]string{"command"},
		)
	})
}

// ObserveKeygen increments the keygen counter for the given outcome.
func ObserveKeygen(outcome string) {
	Init()
	keygenTotal.WithLabelValues(outcome).Inc()
}

// SetDiscovered records how many URLs the current run derived.
func SetDiscovered(n int) {
	Init()
	urlsDiscovered.Set(float64(n))
}

// ObserveBatch records one batch submission.
func ObserveBatch(urls int, ok bool, duration time.Duration) {
	Init()
	status := StatusFailed
	if ok {
		status = StatusOK
		urlsSubmittedTotal.Add(float64(urls))
	}
	batchesTotal.WithLabelValues(status).Inc()
	batchDurationSeconds.Observe(duration.Seconds())
}

// MarkRun stamps the completion time of a command.
func MarkRun(command string, at time.Time) {
	Init()
	lastRunTimestamp.WithLabelValues(command).Set(float64(at.Unix()))
}

// WriteTextfile writes every collector in the default registry to path in
// the Prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
