// Package prometheus exposes docsession outcome counters as a Prometheus
// collector.
//
// [NewCollector] wraps a [docsession.Storage] (or any snapshot source) in a
// prometheus.Collector; [Handler] mounts it on a private registry and serves
// it via promhttp.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry — callers mount the
//     Handler or register the Collector themselves.
//   - Mutate storage state.
package prometheus
