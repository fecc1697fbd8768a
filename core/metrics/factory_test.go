package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/factory"
	metrics "github.com/kilianp07/lift/core/metrics"
	inframetrics "github.com/kilianp07/lift/infra/metrics"
)

// fakeInflux answers the health probe like a ready InfluxDB and accepts
// writes.
func fakeInflux(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"influxdb","message":"ready","status":"pass","checks":[],"version":"2.7.0","commit":"dev"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewMetricsSink_Prometheus(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "Prometheus"}})
	require.NoError(t, err)
	prom, ok := s.(*inframetrics.PromSink)
	require.True(t, ok, "got %T", s)
	assert.NoError(t, prom.RecordEvent(events.Event{Kind: events.KindReset, Floor: 1}))
}

func TestNewMetricsSink_Influx(t *testing.T) {
	srv := fakeInflux(t)
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": srv.URL, "token": "t", "org": "lift", "bucket": "car"},
	}})
	require.NoError(t, err)
	influx, ok := s.(*inframetrics.InfluxSink)
	require.True(t, ok, "got %T", s)
	defer influx.Close()
	assert.NoError(t, influx.RecordBatch(metrics.BatchResult{BatchID: "b1", Strategy: "scan", Distance: 6}))
}

func TestNewMetricsSink_InfluxUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": url}}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSink_PrometheusAndInflux(t *testing.T) {
	srv := fakeInflux(t)
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "prometheus"},
		{Type: "influx", Conf: map[string]any{"url": srv.URL, "bucket": "car"}},
	})
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	require.Len(t, multi.Sinks, 2)
	assert.IsType(t, &inframetrics.PromSink{}, multi.Sinks[0])
	assert.IsType(t, &inframetrics.InfluxSink{}, multi.Sinks[1])
	assert.NoError(t, multi.RecordEvent(events.Event{Kind: events.KindMove, From: 0, To: 4, Distance: 4}))
}

func TestNewMetricsSink_DefaultsAndUnknown(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx")
	assert.Contains(t, err.Error(), "prometheus")
}
