// Package elevator implements the dispatch core of a single elevator car: the
// pending request queue, the set of riders, cumulative distance and stop
// counters, the strict-order and direction-batched schedulers and the idle
// policy applied once a batch has been drained.
//
// An Elevator is not safe for concurrent use. Hosts that share one between
// goroutines must serialize whole operations, for example with Guard. The
// registered observer runs synchronously inside each operation and must not
// call back into the elevator.
package elevator

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/logger"
	"github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/queue"
)

// LobbyFloor is where the car starts and where the idle policy sends it.
const LobbyFloor = 0

var (
	// ErrNilPerson is returned by primitives called without a person.
	ErrNilPerson = errors.New("person is required")
	// ErrNoDropOff is returned when a trip has no destination.
	ErrNoDropOff = model.ErrNoDropOff
)

// Elevator is the aggregate state of one car.
type Elevator struct {
	startFloor int
	floor      int
	traversed  int
	stops      int

	pending queue.Queue
	aboard  queue.Queue

	observer events.Observer
	seq      uint64

	log     logger.Logger
	metrics metrics.MetricsSink
	now     func() time.Time
}

// Option configures an Elevator.
type Option func(*Elevator)

// WithQueues replaces the in-memory pending queue and aboard set.
func WithQueues(pending, aboard queue.Queue) Option {
	return func(e *Elevator) {
		if pending != nil {
			e.pending = pending
		}
		if aboard != nil {
			e.aboard = aboard
		}
	}
}

// WithStartFloor places the car on floor instead of the lobby.
func WithStartFloor(floor int) Option {
	return func(e *Elevator) {
		e.startFloor = floor
		e.floor = floor
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Elevator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the sink receiving batch results. Sinks implementing
// metrics.EventRecorder or metrics.QueueDepthRecorder also receive events and
// queue sizes.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(e *Elevator) {
		if s != nil {
			e.metrics = s
		}
	}
}

// WithClock overrides the time source used for event and batch timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Elevator) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an elevator parked on the lobby with empty in-memory queues.
func New(opts ...Option) *Elevator {
	e := &Elevator{
		pending: queue.NewMemory("req"),
		aboard:  queue.NewMemory("rider"),
		log:     logger.Nop{},
		metrics: metrics.NopSink{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentFloor returns the floor the car is on.
func (e *Elevator) CurrentFloor() int { return e.floor }

// TotalFloorsTraversed returns the cumulative distance travelled.
func (e *Elevator) TotalFloorsTraversed() int { return e.traversed }

// TotalStops returns the cumulative number of stops.
func (e *Elevator) TotalStops() int { return e.stops }

// OnEvent registers the observer, replacing any previous one. A nil observer
// unregisters.
func (e *Elevator) OnEvent(obs events.Observer) { e.observer = obs }

// Requests returns the pending queue in submission order.
func (e *Elevator) Requests(ctx context.Context) ([]model.Person, error) {
	return e.pending.List(ctx)
}

// Riders returns the people currently in the car.
func (e *Elevator) Riders(ctx context.Context) ([]model.Person, error) {
	return e.aboard.List(ctx)
}

// Enqueue validates p and appends it to the pending queue. The stored entry,
// carrying its queue id, is returned.
func (e *Elevator) Enqueue(ctx context.Context, p model.Person) (model.Person, error) {
	if err := p.Validate(); err != nil {
		return model.Person{}, err
	}
	stored, err := e.pending.Add(ctx, p)
	if err != nil {
		return model.Person{}, err
	}
	to, _ := stored.DropOffFloor()
	e.emit(events.Event{
		Kind:       events.KindRequestAdded,
		From:       stored.Floor,
		To:         to,
		Floor:      stored.Floor,
		PersonID:   stored.ID,
		PersonName: stored.Name,
	})
	e.recordDepth(ctx)
	return stored, nil
}

// Snapshot is a point-in-time view of the car.
type Snapshot struct {
	Floor                int            `json:"floor"`
	TotalFloorsTraversed int            `json:"totalFloorsTraversed"`
	TotalStops           int            `json:"totalStops"`
	Requests             []model.Person `json:"requests"`
	Riders               []model.Person `json:"riders"`
}

// Snapshot returns the current state.
func (e *Elevator) Snapshot(ctx context.Context) (Snapshot, error) {
	reqs, err := e.pending.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	riders, err := e.aboard.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Floor:                e.floor,
		TotalFloorsTraversed: e.traversed,
		TotalStops:           e.stops,
		Requests:             reqs,
		Riders:               riders,
	}, nil
}

// Reset empties both queues and puts the car back on its start floor with
// zeroed counters, then emits a reset event. The observer stays registered.
func (e *Elevator) Reset(ctx context.Context) error {
	if _, err := e.pending.Clear(ctx); err != nil {
		return err
	}
	if _, err := e.aboard.Clear(ctx); err != nil {
		return err
	}
	e.floor = e.startFloor
	e.traversed = 0
	e.stops = 0
	e.emit(events.Event{Kind: events.KindReset, Floor: e.floor})
	e.recordDepth(ctx)
	return nil
}

func (e *Elevator) emit(ev events.Event) {
	e.seq++
	ev.Seq = e.seq
	ev.Time = e.now()
	e.log.Debugw("elevator event", map[string]any{
		"seq":    ev.Seq,
		"type":   string(ev.Kind),
		"floor":  ev.Floor,
		"person": ev.PersonName,
	})
	if rec, ok := e.metrics.(metrics.EventRecorder); ok {
		if err := rec.RecordEvent(ev); err != nil {
			e.log.Warnf("record event: %v", err)
		}
	}
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Elevator) recordDepth(ctx context.Context) {
	rec, ok := e.metrics.(metrics.QueueDepthRecorder)
	if !ok {
		return
	}
	reqs, err := e.pending.List(ctx)
	if err != nil {
		return
	}
	riders, err := e.aboard.List(ctx)
	if err != nil {
		return
	}
	if err := rec.RecordQueueDepth(len(reqs), len(riders)); err != nil {
		e.log.Warnf("record queue depth: %v", err)
	}
}
