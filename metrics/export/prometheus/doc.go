// Package prometheus renders bossanova metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps a [metrics.Metrics] and exposes an
// [http.Handler]. Counter names are prefixed bossanova_*_total; the single
// histogram is bossanova_translate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry: callers mount the Handler.
//   - Mutate metric state.
package prometheus
