package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/lift/core/model"
)

// Memory is an in-process Queue. It is not safe for concurrent use; the
// elevator that owns it serializes access.
type Memory struct {
	prefix  string
	next    int
	entries []model.Person
}

// NewMemory returns an empty queue generating ids "<prefix>_<n>".
func NewMemory(prefix string) *Memory {
	return &Memory{prefix: prefix, next: 1}
}

func (m *Memory) Add(_ context.Context, p model.Person) (model.Person, error) {
	p.ID = fmt.Sprintf("%s_%d", m.prefix, m.next)
	m.next++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.entries = append(m.entries, p)
	return p, nil
}

func (m *Memory) List(context.Context) ([]model.Person, error) {
	out := make([]model.Person, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *Memory) Remove(_ context.Context, id string) (model.Person, error) {
	for i, p := range m.entries {
		if p.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return p, nil
		}
	}
	return model.Person{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *Memory) Clear(context.Context) (int, error) {
	n := len(m.entries)
	m.entries = nil
	return n, nil
}

// Len returns the number of entries.
func (m *Memory) Len() int { return len(m.entries) }
