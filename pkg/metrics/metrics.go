// Package metrics provides Prometheus metrics for SoR parsing.
//
// All metrics register on the default registry via promauto. The parser
// records per-phase durations, record and byte throughput, and data quality
// counters (malformed records, decode anomalies) that let operators watch for
// schema drift in their inputs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsParsed counts records decoded into the table.
	RecordsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sor_records_parsed_total",
			Help: "Total number of records parsed",
		},
	)

	// BytesRead counts input bytes consumed by the parser.
	BytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sor_bytes_read_total",
			Help: "Total number of input bytes read",
		},
	)

	// MalformedRecords counts records that violated the field grammar. These
	// records still produce a row; fields past the violation are missing.
	MalformedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sor_malformed_records_total",
			Help: "Total number of records with grammar violations",
		},
	)

	// DecodeAnomalies counts non-missing fields that failed to decode under
	// the inferred column type and were stored as missing.
	DecodeAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sor_decode_anomalies_total",
			Help: "Total number of fields incompatible with their column type",
		},
	)

	// SchemasInferred counts schema inference runs.
	SchemasInferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sor_schemas_inferred_total",
			Help: "Total number of schema inference runs",
		},
	)

	// PhaseDuration tracks the duration of parse phases.
	// Labels: phase (load/infer/decode/merge)
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sor_phase_duration_seconds",
			Help: "Duration of parse phases in seconds",
			Buckets: []float64{
				.0001, // 100μs - tiny inputs
				.001,  // 1ms
				.01,   // 10ms
				.1,    // 100ms
				1,     // 1s
				10,    // 10s - multi-gigabyte files
				60,
			},
		},
		[]string{"phase"},
	)

	// WorkersActive reports the worker count of the parse in flight.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sor_workers_active",
			Help: "Number of active parse workers",
		},
	)
)

// Timer measures one parse phase and records it on Stop.
type Timer struct {
	start time.Time
	phase string
}

// NewTimer starts timing the named phase.
func NewTimer(phase string) *Timer {
	return &Timer{start: time.Now(), phase: phase}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	PhaseDuration.WithLabelValues(t.phase).Observe(elapsed.Seconds())
	return elapsed
}
