// Package metrics defines the sinks that record elevator activity. Sinks such
// as PromSink and InfluxSink (see infra/metrics) record batch summaries and
// may implement the optional recorder interfaces for per-event counters and
// queue depth. Several sinks are combined with NewMultiSink; the factory
// helpers return a MultiSink automatically when multiple sinks are configured.
package metrics
