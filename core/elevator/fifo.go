package elevator

import (
	"context"
	"errors"

	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/queue"
)

// ServeNext takes the oldest pending request, picks it up and drops it off
// before returning it. An empty queue yields nil without error.
func (e *Elevator) ServeNext(ctx context.Context) (*model.Person, error) {
	reqs, err := e.pending.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	head := reqs[0]
	if _, ok := head.DropOffFloor(); !ok {
		return nil, ErrNoDropOff
	}
	if _, err := e.pending.Remove(ctx, head.ID); err != nil && !errors.Is(err, queue.ErrNotFound) {
		return nil, err
	}
	served := head
	rider := head
	if err := e.PickUp(ctx, &rider); err != nil {
		return nil, err
	}
	if err := e.DropOff(ctx, &rider); err != nil {
		return nil, err
	}
	e.recordDepth(ctx)
	return &served, nil
}

// ServeAll drains the pending queue in strict arrival order, then applies the
// idle policy with opts.Time. Each request is fully served before the next is
// looked at.
func (e *Elevator) ServeAll(ctx context.Context, opts ServeOptions) (Report, error) {
	rep := e.beginBatch(StrategyFIFO, opts)
	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		p, err := e.ServeNext(ctx)
		if err != nil {
			return rep, err
		}
		if p == nil {
			break
		}
		rep.Served = append(rep.Served, *p)
	}
	returned, err := e.ApplyIdlePolicy(ctx, opts.Time)
	rep.IdleReturn = returned
	e.finishBatch(&rep)
	return rep, err
}

// Serve drains the queue with the given strategy.
func (e *Elevator) Serve(ctx context.Context, s Strategy, opts ServeOptions) (Report, error) {
	if s == StrategySCAN {
		return e.ServeAllOptimized(ctx, opts)
	}
	return e.ServeAll(ctx, opts)
}
