package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/lift/core/events"
	coremqtt "github.com/kilianp07/lift/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records everything it is asked to publish. It is used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Events   []events.Event
	States   []any
	FailKind map[events.Kind]bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailKind: make(map[events.Kind]bool)}
}

// PublishEvent records ev or fails if its kind is configured to fail.
func (m *MockPublisher) PublishEvent(_ context.Context, ev events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailKind[ev.Kind] {
		return fmt.Errorf("publish %s failed", ev.Kind)
	}
	m.Events = append(m.Events, ev)
	return nil
}

// PublishState records state.
func (m *MockPublisher) PublishState(_ context.Context, state any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.States = append(m.States, state)
	return nil
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}

// Snapshot returns copies of the recorded events and states.
func (m *MockPublisher) Snapshot() ([]events.Event, []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.Events...), append([]any(nil), m.States...)
}
