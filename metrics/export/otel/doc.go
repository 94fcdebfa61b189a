// Package otel provides OpenTelemetry metric bindings for docsession
// counters.
//
// [NewOTelExporter] registers one Int64ObservableCounter per docsession
// metric. A single callback reads [docsession.Storage.MetricsSnapshot] on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate storage state.
package otel
