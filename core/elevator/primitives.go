package elevator

import (
	"context"
	"errors"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/queue"
)

// moveTo travels to target, even when the car is already there, and returns
// the distance covered.
func (e *Elevator) moveTo(target int) int {
	from := e.floor
	distance := target - from
	if distance < 0 {
		distance = -distance
	}
	e.traversed += distance
	e.floor = target
	e.emit(events.Event{Kind: events.KindMove, From: from, To: target, Distance: distance, Floor: target})
	return distance
}

// stop counts one door opening on the current floor.
func (e *Elevator) stop() int {
	e.stops++
	e.emit(events.Event{Kind: events.KindStop, Floor: e.floor, TotalStops: e.stops})
	return e.stops
}

// PickUp moves to the origin floor of p, stops and lets p board. On success
// p.ID is updated to the id of its entry in the aboard set, so the same value
// can be handed to DropOff.
func (e *Elevator) PickUp(ctx context.Context, p *model.Person) error {
	if p == nil {
		return ErrNilPerson
	}
	rider, err := e.aboard.Add(ctx, *p)
	if err != nil {
		return err
	}
	e.moveTo(p.Floor)
	e.stop()
	*p = rider
	e.emit(events.Event{Kind: events.KindPickup, Floor: e.floor, PersonID: rider.ID, PersonName: rider.Name})
	return nil
}

// DropOff moves to the destination of p, stops and removes exactly the aboard
// entry with p's id. A person without a destination is rejected before
// anything changes and stays aboard.
func (e *Elevator) DropOff(ctx context.Context, p *model.Person) error {
	if p == nil {
		return ErrNilPerson
	}
	to, ok := p.DropOffFloor()
	if !ok {
		return ErrNoDropOff
	}
	if err := e.alight(ctx, p.ID); err != nil {
		return err
	}
	e.moveTo(to)
	e.stop()
	e.emit(events.Event{Kind: events.KindDropoff, Floor: e.floor, PersonID: p.ID, PersonName: p.Name})
	return nil
}

// alight removes the aboard entry id. Removing someone who is not aboard is
// a no-op.
func (e *Elevator) alight(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := e.aboard.Remove(ctx, id); err != nil && !errors.Is(err, queue.ErrNotFound) {
		return err
	}
	return nil
}
