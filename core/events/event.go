package events

import "time"

// Kind identifies the operation an Event describes.
type Kind string

const (
	KindRequestAdded      Kind = "request_added"
	KindMove              Kind = "move"
	KindStop              Kind = "stop"
	KindPickup            Kind = "pickup"
	KindDropoff           Kind = "dropoff"
	KindIdleReturnToLobby Kind = "idle_return_to_lobby"
	// KindReset marks the car being cleared and put back on Floor.
	KindReset Kind = "reset"
)

// Kinds lists every event kind in emission-relevant order.
var Kinds = []Kind{KindRequestAdded, KindMove, KindStop, KindPickup, KindDropoff, KindIdleReturnToLobby, KindReset}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Event is a single notification from the elevator core. Only the fields
// relevant to Kind are populated.
type Event struct {
	Seq        uint64    `json:"seq"`
	Kind       Kind      `json:"type"`
	Time       time.Time `json:"time"`
	From       int       `json:"from"`
	To         int       `json:"to"`
	Distance   int       `json:"distance"`
	Floor      int       `json:"floor"`
	TotalStops int       `json:"totalStops,omitempty"`
	PersonID   string    `json:"personId,omitempty"`
	PersonName string    `json:"personName,omitempty"`
}

// Observer receives events synchronously. Observers must not call back into
// the elevator that emitted the event.
type Observer func(Event)

// Multi returns an observer calling each non-nil observer in order.
func Multi(obs ...Observer) Observer {
	list := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return func(e Event) {
		for _, o := range list {
			o(e)
		}
	}
}

// Recorder is an Observer that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Observe appends e.
func (r *Recorder) Observe(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the kinds of the recorded events.
func (r *Recorder) Kinds() []Kind {
	out := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Filter returns the recorded events of kind k.
func (r *Recorder) Filter(k Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
