package records

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps records in insertion order in memory. Ids are generated as
// "<prefix>_<n>" with a counter that is never reset.
type MemoryStore struct {
	mu      sync.RWMutex
	prefix  string
	next    int
	records []Record
	now     func() time.Time
}

// NewMemoryStore returns an empty store for the collection.
func NewMemoryStore(c Collection) *MemoryStore {
	return &MemoryStore{prefix: c.Prefix(), next: 1, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, in Input) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Record{
		ID:           fmt.Sprintf("%s_%d", s.prefix, s.next),
		Name:         in.Name,
		CurrentFloor: in.CurrentFloor,
		DropOffFloor: in.DropOffFloor,
		CreatedAt:    s.now().UTC(),
	}
	s.next++
	s.records = append(s.records, r)
	return r, nil
}

func (s *MemoryStore) List(context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.records[i], nil
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, id string, p Patch) (Record, error) {
	if err := p.Validate(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	s.records[i] = p.Apply(s.records[i])
	return s.records[i], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	r := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return r, nil
}

func (s *MemoryStore) DeleteAll(context.Context) (int, error) {
	s.mu.Lock()
	n := len(s.records)
	s.records = nil
	s.mu.Unlock()
	return n, nil
}

func (s *MemoryStore) index(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
