package scenarios

import (
	"context"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/logger"
	"github.com/kilianp07/lift/core/metrics"
)

// Options override parts of a scenario run.
type Options struct {
	// Strategy replaces the scenario strategy when set.
	Strategy string
	// Time replaces the scenario idle time when set.
	Time string
	// Observer receives every event in addition to the recorded copy.
	Observer events.Observer
	Sink     metrics.MetricsSink
	Logger   logger.Logger
}

// Result is the outcome of one scenario run.
type Result struct {
	Report   elevator.Report
	Events   []events.Event
	Snapshot elevator.Snapshot
}

// Run enqueues the scenario requests on a fresh in-memory car and serves them
// as a single batch.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	strategy := sc.Strategy
	if opts.Strategy != "" {
		strategy = opts.Strategy
	}
	s, err := elevator.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	var rec events.Recorder
	elevOpts := []elevator.Option{elevator.WithStartFloor(sc.StartFloor)}
	if opts.Sink != nil {
		elevOpts = append(elevOpts, elevator.WithMetrics(opts.Sink))
	}
	if opts.Logger != nil {
		elevOpts = append(elevOpts, elevator.WithLogger(opts.Logger))
	}
	car := elevator.New(elevOpts...)
	car.OnEvent(events.Multi(rec.Observe, opts.Observer))

	for _, r := range sc.Requests {
		p, err := r.ToModel()
		if err != nil {
			return nil, err
		}
		if _, err := car.Enqueue(ctx, p); err != nil {
			return nil, err
		}
	}

	idle := sc.Time
	if opts.Time != "" {
		idle = opts.Time
	}
	var serveOpts elevator.ServeOptions
	if idle != "" {
		serveOpts.Time = elevator.Clock(idle)
	}
	rep, err := car.Serve(ctx, s, serveOpts)
	if err != nil {
		return nil, err
	}
	snap, err := car.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Report: rep, Events: rec.Events, Snapshot: snap}, nil
}
