package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/lift/core/events"
	coremetrics "github.com/kilianp07/lift/core/metrics"
)

// PromSink records car activity in Prometheus metrics.
type PromSink struct {
	events        *prometheus.CounterVec
	distance      prometheus.Counter
	floor         prometheus.Gauge
	queue         *prometheus.GaugeVec
	batches       *prometheus.CounterVec
	served        *prometheus.CounterVec
	batchDistance *prometheus.HistogramVec
	batchStops    *prometheus.HistogramVec
}

// NewPromSink registers car metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lift_events_total",
			Help: "Events emitted by the car, by type",
		}, []string{"type"}),
		distance: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lift_floors_traversed_total",
			Help: "Cumulative number of floors travelled",
		}),
		floor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lift_current_floor",
			Help: "Floor the car is on",
		}),
		queue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lift_queue_depth",
			Help: "Number of people pending or aboard",
		}, []string{"queue"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lift_batches_total",
			Help: "Served batches by strategy",
		}, []string{"strategy"}),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lift_requests_served_total",
			Help: "Requests served by strategy",
		}, []string{"strategy"}),
		batchDistance: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lift_batch_distance_floors",
			Help:    "Floors travelled per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"strategy"}),
		batchStops: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lift_batch_stops",
			Help:    "Stops per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"strategy"}),
	}
	var err error
	if s.events, err = register(reg, s.events); err != nil {
		return nil, err
	}
	if s.distance, err = register(reg, s.distance); err != nil {
		return nil, err
	}
	if s.floor, err = register(reg, s.floor); err != nil {
		return nil, err
	}
	if s.queue, err = register(reg, s.queue); err != nil {
		return nil, err
	}
	if s.batches, err = register(reg, s.batches); err != nil {
		return nil, err
	}
	if s.served, err = register(reg, s.served); err != nil {
		return nil, err
	}
	if s.batchDistance, err = register(reg, s.batchDistance); err != nil {
		return nil, err
	}
	if s.batchStops, err = register(reg, s.batchStops); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBatch updates the per-strategy batch metrics.
func (s *PromSink) RecordBatch(res coremetrics.BatchResult) error {
	s.batches.WithLabelValues(res.Strategy).Inc()
	s.served.WithLabelValues(res.Strategy).Add(float64(res.Requests))
	s.batchDistance.WithLabelValues(res.Strategy).Observe(float64(res.Distance))
	s.batchStops.WithLabelValues(res.Strategy).Observe(float64(res.Stops))
	return nil
}

// RecordEvent counts ev and follows the car position.
func (s *PromSink) RecordEvent(ev events.Event) error {
	s.events.WithLabelValues(string(ev.Kind)).Inc()
	switch ev.Kind {
	case events.KindMove:
		s.distance.Add(float64(ev.Distance))
		s.floor.Set(float64(ev.To))
	case events.KindReset:
		s.floor.Set(float64(ev.Floor))
	}
	return nil
}

// RecordQueueDepth sets the pending and aboard gauges.
func (s *PromSink) RecordQueueDepth(pending, aboard int) error {
	s.queue.WithLabelValues("pending").Set(float64(pending))
	s.queue.WithLabelValues("aboard").Set(float64(aboard))
	return nil
}

// Handler exposes the metrics gathered by g, the default gatherer when nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var (
	_ coremetrics.EventRecorder      = (*PromSink)(nil)
	_ coremetrics.QueueDepthRecorder = (*PromSink)(nil)
)
