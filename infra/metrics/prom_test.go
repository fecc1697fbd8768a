package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
	coremetrics "github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/core/model"
)

func TestPromSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	_ = sink.RecordEvent(events.Event{Kind: events.KindMove, From: 0, To: 3, Distance: 3})
	_ = sink.RecordEvent(events.Event{Kind: events.KindMove, From: 3, To: 1, Distance: 2})
	_ = sink.RecordEvent(events.Event{Kind: events.KindStop, Floor: 1})
	_ = sink.RecordQueueDepth(2, 1)
	_ = sink.RecordBatch(coremetrics.BatchResult{Strategy: "scan", Requests: 2, Distance: 6, Stops: 4})

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"moves", testutil.ToFloat64(sink.events.WithLabelValues("move")), 2},
		{"stops", testutil.ToFloat64(sink.events.WithLabelValues("stop")), 1},
		{"distance", testutil.ToFloat64(sink.distance), 5},
		{"floor", testutil.ToFloat64(sink.floor), 1},
		{"pending", testutil.ToFloat64(sink.queue.WithLabelValues("pending")), 2},
		{"aboard", testutil.ToFloat64(sink.queue.WithLabelValues("aboard")), 1},
		{"batches", testutil.ToFloat64(sink.batches.WithLabelValues("scan")), 1},
		{"served", testutil.ToFloat64(sink.served.WithLabelValues("scan")), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
	if n := testutil.CollectAndCount(sink.batchDistance); n != 1 {
		t.Errorf("expected one histogram series got %d", n)
	}
}

func TestPromSink_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = a.RecordEvent(events.Event{Kind: events.KindPickup})
	_ = b.RecordEvent(events.Event{Kind: events.KindPickup})
	if got := testutil.ToFloat64(a.events.WithLabelValues("pickup")); got != 2 {
		t.Fatalf("collectors not shared: %v", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, _ := NewPromSinkWithRegistry(reg)
	_ = sink.RecordEvent(events.Event{Kind: events.KindDropoff})
	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `lift_events_total{type="dropoff"} 1`) {
		t.Fatalf("metric missing from output:\n%s", rr.Body.String())
	}
}

// After a reset the gauges follow the car back to its start floor.
func TestPromSink_FollowsReset(t *testing.T) {
	ctx := context.Background()
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	car := elevator.New(elevator.WithStartFloor(2), elevator.WithMetrics(sink))
	for _, tr := range [][2]int{{4, 8}, {5, 1}} {
		p, err := model.Trip("A", tr[0], tr[1])
		if err != nil {
			t.Fatalf("trip: %v", err)
		}
		if _, err := car.Enqueue(ctx, p); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if _, err := car.ServeNext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if got := testutil.ToFloat64(sink.floor); got != 8 {
		t.Fatalf("floor before reset: got %v want 8", got)
	}
	if got := testutil.ToFloat64(sink.queue.WithLabelValues("pending")); got != 1 {
		t.Fatalf("pending before reset: got %v want 1", got)
	}

	if err := car.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := testutil.ToFloat64(sink.floor); got != 2 {
		t.Errorf("floor after reset: got %v want 2", got)
	}
	if got := testutil.ToFloat64(sink.queue.WithLabelValues("pending")); got != 0 {
		t.Errorf("pending after reset: got %v want 0", got)
	}
	if got := testutil.ToFloat64(sink.events.WithLabelValues("reset")); got != 1 {
		t.Errorf("reset events: got %v want 1", got)
	}
}
