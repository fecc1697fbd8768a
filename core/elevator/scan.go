package elevator

import (
	"context"
	"errors"
	"sort"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/queue"
)

// sweepPlan is the stop order of one direction-batched run.
type sweepPlan struct {
	floors   []int
	pickups  map[int][]int
	dropoffs map[int][]int
}

// planSweep indexes the batch by floor and orders the distinct floors: those
// at or above start increasing, then those below start decreasing. The
// partition is fixed at batch start.
func planSweep(batch []model.Person, start int) sweepPlan {
	plan := sweepPlan{pickups: map[int][]int{}, dropoffs: map[int][]int{}}
	seen := map[int]bool{}
	var up, down []int
	add := func(f int) {
		if seen[f] {
			return
		}
		seen[f] = true
		if f >= start {
			up = append(up, f)
		} else {
			down = append(down, f)
		}
	}
	for i, p := range batch {
		to, _ := p.DropOffFloor()
		add(p.Floor)
		add(to)
		plan.pickups[p.Floor] = append(plan.pickups[p.Floor], i)
		plan.dropoffs[to] = append(plan.dropoffs[to], i)
	}
	sort.Ints(up)
	sort.Sort(sort.Reverse(sort.IntSlice(down)))
	plan.floors = append(up, down...)
	return plan
}

// ServeAllOptimized serves the whole pending queue as one frozen batch: the
// car sweeps up over every stop at or above its floor, then down over the
// rest, stopping once per floor for all pickups then all drop-offs there. The
// batch is then removed from the queue and the idle policy applied.
//
// A destination visited before its origin drops nobody off; that person
// boards later in the sweep and stays aboard after the batch.
func (e *Elevator) ServeAllOptimized(ctx context.Context, opts ServeOptions) (Report, error) {
	rep := e.beginBatch(StrategySCAN, opts)
	batch, err := e.pending.List(ctx)
	if err != nil {
		return rep, err
	}
	for _, p := range batch {
		if _, ok := p.DropOffFloor(); !ok {
			return rep, ErrNoDropOff
		}
	}

	plan := planSweep(batch, e.floor)
	boarded := make(map[int]model.Person, len(batch))
	for _, floor := range plan.floors {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		e.moveTo(floor)
		e.stop()
		for _, i := range plan.pickups[floor] {
			rider, err := e.aboard.Add(ctx, batch[i])
			if err != nil {
				return rep, err
			}
			boarded[i] = rider
			e.emit(events.Event{Kind: events.KindPickup, Floor: floor, PersonID: rider.ID, PersonName: rider.Name})
		}
		for _, i := range plan.dropoffs[floor] {
			p := batch[i]
			if rider, ok := boarded[i]; ok {
				if err := e.alight(ctx, rider.ID); err != nil {
					return rep, err
				}
				p = rider
			} else {
				e.log.Warnf("%s dropped off at floor %d before boarding", p.Name, floor)
			}
			e.emit(events.Event{Kind: events.KindDropoff, Floor: floor, PersonID: p.ID, PersonName: p.Name})
		}
	}

	for _, p := range batch {
		if _, err := e.pending.Remove(ctx, p.ID); err != nil && !errors.Is(err, queue.ErrNotFound) {
			return rep, err
		}
	}
	rep.Served = batch
	e.recordDepth(ctx)

	returned, err := e.ApplyIdlePolicy(ctx, opts.Time)
	rep.IdleReturn = returned
	e.finishBatch(&rep)
	return rep, err
}
