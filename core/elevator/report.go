package elevator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/core/model"
)

// Strategy selects the scheduler used to drain the pending queue.
type Strategy string

const (
	// StrategyFIFO serves requests one at a time in arrival order.
	StrategyFIFO Strategy = "fifo"
	// StrategySCAN sweeps up then down over the whole batch.
	StrategySCAN Strategy = "scan"
)

// ParseStrategy accepts "fifo"/"strict" and "scan"/"optimized".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "strict", "":
		return StrategyFIFO, nil
	case "scan", "optimized":
		return StrategySCAN, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// ServeOptions configures a batch run.
type ServeOptions struct {
	// Time feeds the idle policy after the batch. Nil skips the policy.
	Time *IdleTime
	// OnEvent, when set, is registered as the observer before the batch
	// starts and stays registered afterwards.
	OnEvent events.Observer
}

// Report summarizes one served batch.
type Report struct {
	BatchID    string
	Strategy   Strategy
	Served     []model.Person
	Distance   int
	Stops      int
	StartFloor int
	EndFloor   int
	IdleReturn bool
	StartTime  time.Time
	EndTime    time.Time
}

// BatchResult converts the report for metrics sinks.
func (r Report) BatchResult() metrics.BatchResult {
	return metrics.BatchResult{
		BatchID:    r.BatchID,
		Strategy:   string(r.Strategy),
		Requests:   len(r.Served),
		Distance:   r.Distance,
		Stops:      r.Stops,
		StartFloor: r.StartFloor,
		EndFloor:   r.EndFloor,
		IdleReturn: r.IdleReturn,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

func (e *Elevator) beginBatch(s Strategy, opts ServeOptions) Report {
	if opts.OnEvent != nil {
		e.OnEvent(opts.OnEvent)
	}
	return Report{
		BatchID:    uuid.NewString(),
		Strategy:   s,
		StartFloor: e.floor,
		Distance:   e.traversed,
		Stops:      e.stops,
		StartTime:  e.now(),
	}
}

// finishBatch turns the counters captured by beginBatch into deltas and
// reports the batch to the metrics sink.
func (e *Elevator) finishBatch(r *Report) {
	r.Distance = e.traversed - r.Distance
	r.Stops = e.stops - r.Stops
	r.EndFloor = e.floor
	r.EndTime = e.now()
	e.log.Infof("batch %s (%s): %d served, distance %d, %d stops, floor %d -> %d",
		r.BatchID, r.Strategy, len(r.Served), r.Distance, r.Stops, r.StartFloor, r.EndFloor)
	if err := e.metrics.RecordBatch(r.BatchResult()); err != nil {
		e.log.Warnf("record batch: %v", err)
	}
}
