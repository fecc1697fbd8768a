package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/lift/core/events"
	coremetrics "github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/infra/logger"
)

// InfluxSink writes batch results and car events to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordBatch writes one lift_batch point.
func (s *InfluxSink) RecordBatch(res coremetrics.BatchResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("lift_batch").
		AddTag("batch_id", res.BatchID).
		AddTag("strategy", res.Strategy).
		AddTag("idle_return", boolTag(res.IdleReturn)).
		AddField("requests", res.Requests).
		AddField("distance", res.Distance).
		AddField("stops", res.Stops).
		AddField("start_floor", res.StartFloor).
		AddField("end_floor", res.EndFloor).
		AddField("duration_ms", res.EndTime.Sub(res.StartTime).Milliseconds()).
		SetTime(res.EndTime)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEvent writes one lift_event point.
func (s *InfluxSink) RecordEvent(ev events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("lift_event").
		AddTag("type", string(ev.Kind)).
		AddField("seq", int64(ev.Seq)).
		AddField("floor", ev.Floor)
	switch ev.Kind {
	case events.KindMove:
		p = p.AddField("from", ev.From).AddField("to", ev.To).AddField("distance", ev.Distance)
	case events.KindStop:
		p = p.AddField("total_stops", ev.TotalStops)
	}
	if ev.PersonName != "" {
		p = p.AddField("person", ev.PersonName)
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(ev.Time))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
