// Package metrics collects per-run counters and writes them out as a
// Prometheus textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"IntentScanner/internal/domain"
)

// Registry holds every collector of a run. It is written out as a
// node_exporter textfile when the run ends.
var Registry = prometheus.NewRegistry()

var (
	// Verdicts counts classifier verdicts by the ladder rung that produced them.
	Verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentscan_verdicts_total",
			Help: "Verdicts produced, labeled by the ladder rung that produced them.",
		},
		[]string{"source"},
	)
	// CompletionDuration times LLM completion calls by result.
	CompletionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intentscan_llm_request_duration_seconds",
			Help:    "Duration of LLM completion calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	// RowsProcessed counts rows that received an outcome in this run.
	RowsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intentscan_rows_processed_total",
			Help: "Rows classified in this run.",
		},
	)
	// Checkpoints counts checkpoint writes by result.
	Checkpoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentscan_checkpoints_total",
			Help: "Full-dataset checkpoint writes, labeled by result.",
		},
		[]string{"result"},
	)
	// HighIntentRows is the size of the high-intent subset of the last report.
	HighIntentRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intentscan_high_intent_rows",
			Help: "Rows at or above the high-intent threshold in the last report.",
		},
	)
)

func init() {
	Registry.MustRegister(Verdicts)
	Registry.MustRegister(CompletionDuration)
	Registry.MustRegister(RowsProcessed)
	Registry.MustRegister(Checkpoints)
	Registry.MustRegister(HighIntentRows)
}

// ObserveVerdict counts a verdict by source.
func ObserveVerdict(source domain.VerdictSource) {
	Verdicts.WithLabelValues(string(source)).Inc()
}

// ObserveCompletion records one LLM call.
func ObserveCompletion(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CompletionDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveCheckpoint counts a checkpoint write.
func ObserveCheckpoint(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	Checkpoints.WithLabelValues(result).Inc()
}

// WriteTextfile dumps the registry in Prometheus text format to path.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
