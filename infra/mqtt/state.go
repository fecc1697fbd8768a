package mqtt

import (
	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/model"
)

// CarState is the retained snapshot published on the state topic. The relay
// keeps it current from the event stream alone.
type CarState struct {
	Floor                int            `json:"floor"`
	TotalFloorsTraversed int            `json:"totalFloorsTraversed"`
	TotalStops           int            `json:"totalStops"`
	Requests             []model.Person `json:"requests"`
	Riders               []model.Person `json:"riders"`
}

// Apply folds ev into the state and reports whether the car came to rest, in
// which case the state is worth publishing.
//
// Pickups carry the rider id, not the request id, so the waiting entry is
// matched by name and origin floor. A drop-off only clears a rider it knows.
func (s *CarState) Apply(ev events.Event) bool {
	switch ev.Kind {
	case events.KindRequestAdded:
		p := model.Person{ID: ev.PersonID, Name: ev.PersonName, Floor: ev.From}
		_ = p.RequestDropOff(ev.To)
		s.Requests = append(s.Requests, p)
	case events.KindMove:
		s.Floor = ev.To
		s.TotalFloorsTraversed += ev.Distance
	case events.KindStop:
		s.Floor = ev.Floor
		s.TotalStops = ev.TotalStops
		return true
	case events.KindPickup:
		for i, p := range s.Requests {
			if p.Name == ev.PersonName && p.Floor == ev.Floor {
				rider := p
				rider.ID = ev.PersonID
				s.Requests = append(s.Requests[:i], s.Requests[i+1:]...)
				s.Riders = append(s.Riders, rider)
				break
			}
		}
	case events.KindDropoff:
		for i, p := range s.Riders {
			if p.ID == ev.PersonID {
				s.Riders = append(s.Riders[:i], s.Riders[i+1:]...)
				break
			}
		}
	case events.KindIdleReturnToLobby:
		s.Floor = ev.Floor
		return true
	case events.KindReset:
		*s = CarState{Floor: ev.Floor}
		return true
	}
	return false
}

func (s *CarState) clone() CarState {
	c := *s
	c.Requests = append([]model.Person{}, s.Requests...)
	c.Riders = append([]model.Person{}, s.Riders...)
	return c
}
