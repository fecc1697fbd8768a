// Package events defines the notifications emitted by the elevator core.
//
// Available event kinds:
//   - request_added: a person joined the pending queue
//   - move: the car travelled between two floors (possibly zero floors)
//   - stop: the car paused to open its doors
//   - pickup: a person boarded
//   - dropoff: a person left the car
//   - idle_return_to_lobby: the idle policy sent the empty car to floor 0
package events
