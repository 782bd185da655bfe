// Package otel binds bossanova counters and the translate latency histogram
// to an OpenTelemetry meter.
//
// Related counters share one Int64ObservableCounter and are distinguished by
// an attribute: bossanova.token.operations{outcome},
// bossanova.session.cookies{action}, bossanova.dictionary.loads{result} and
// bossanova.translate.phrases{result}. Latency is exported as cumulative
// bucket gauges labelled by "le" plus a sample count. A single callback reads
// [metrics.Metrics.Snapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider: callers supply the Meter.
//   - Mutate metric state.
package otel
