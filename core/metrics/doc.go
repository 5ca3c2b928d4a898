// Package metrics defines the sink interfaces the engine records run
// outcomes through: assignments, coverage gaps, strategy attempts, and
// per-run summaries. PromSink and InfluxSink in infra/metrics are the
// shipped adapters; NewMetricsSink builds whichever the configuration
// names and hides several behind a MultiSink when more than one is
// listed.
package metrics
