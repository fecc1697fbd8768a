// Package mqtt defines how car activity is pushed to live consumers such as a
// renderer or a building dashboard.
package mqtt

import (
	"context"
	"errors"

	"github.com/kilianp07/lift/core/events"
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher sends car events and state snapshots to a broker.
type Publisher interface {
	// PublishEvent sends one event on the topic of its kind.
	PublishEvent(ctx context.Context, ev events.Event) error
	// PublishState sends a retained snapshot of the car.
	PublishState(ctx context.Context, state any) error
	Disconnect()
}

// NopPublisher drops everything.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, events.Event) error { return nil }
func (NopPublisher) PublishState(context.Context, any) error          { return nil }
func (NopPublisher) Disconnect()                                      {}
