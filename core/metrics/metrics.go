package metrics

import (
	"time"

	"github.com/kilianp07/lift/core/events"
)

// BatchResult summarizes one fully served batch.
type BatchResult struct {
	BatchID    string
	Strategy   string
	Requests   int
	Distance   int
	Stops      int
	StartFloor int
	EndFloor   int
	IdleReturn bool
	StartTime  time.Time
	EndTime    time.Time
}

// MetricsSink records batch results for observability purposes.
type MetricsSink interface {
	RecordBatch(res BatchResult) error
}

// EventRecorder records individual elevator events.
type EventRecorder interface {
	RecordEvent(ev events.Event) error
}

// QueueDepthRecorder records the size of the pending queue and aboard set.
type QueueDepthRecorder interface {
	RecordQueueDepth(pending, aboard int) error
}

// NopSink implements MetricsSink and every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordBatch(BatchResult) error   { return nil }
func (NopSink) RecordEvent(events.Event) error  { return nil }
func (NopSink) RecordQueueDepth(int, int) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBatch forwards the result to all sinks, returning the first error encountered.
func (m *MultiSink) RecordBatch(res BatchResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordBatch(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordEvent forwards events to sinks implementing EventRecorder.
func (m *MultiSink) RecordEvent(ev events.Event) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EventRecorder); ok {
			if err := rec.RecordEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueueDepth forwards queue depth to sinks implementing QueueDepthRecorder.
func (m *MultiSink) RecordQueueDepth(pending, aboard int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(QueueDepthRecorder); ok {
			if err := rec.RecordQueueDepth(pending, aboard); err != nil {
				return err
			}
		}
	}
	return nil
}
