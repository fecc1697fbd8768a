package events

import (
	"encoding/json"
	"fmt"
)

// Format renders e as a single human readable line.
func Format(e Event) string {
	switch e.Kind {
	case KindRequestAdded:
		return fmt.Sprintf("Request added: %s", e.PersonName)
	case KindMove:
		if e.Distance == 0 {
			return fmt.Sprintf("Move: already at floor %d", e.To)
		}
		return fmt.Sprintf("Move: %d -> %d (distance %d)", e.From, e.To, e.Distance)
	case KindStop:
		return fmt.Sprintf("Stop #%d at floor %d", e.TotalStops, e.Floor)
	case KindPickup:
		return fmt.Sprintf("Pickup: %s at floor %d", e.PersonName, e.Floor)
	case KindDropoff:
		return fmt.Sprintf("Dropoff: %s at floor %d", e.PersonName, e.Floor)
	case KindIdleReturnToLobby:
		return fmt.Sprintf("Idle policy: returned to lobby (floor %d)", e.Floor)
	case KindReset:
		return fmt.Sprintf("Reset: car back on floor %d", e.Floor)
	}
	b, _ := json.Marshal(e)
	return fmt.Sprintf("Event: %s", b)
}
