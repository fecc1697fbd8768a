package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/records"
)

// Records adapts a records.Store to the Queue interface. Every mutation is
// mirrored into the store, so the store is the source of truth.
type Records struct {
	store records.Store
}

// NewRecords wraps s.
func NewRecords(s records.Store) *Records { return &Records{store: s} }

func (q *Records) Add(ctx context.Context, p model.Person) (model.Person, error) {
	in, err := records.FromPerson(p)
	if err != nil {
		return model.Person{}, err
	}
	r, err := q.store.Create(ctx, in)
	if err != nil {
		return model.Person{}, fmt.Errorf("store create: %w", err)
	}
	return r.Person(), nil
}

func (q *Records) List(ctx context.Context) ([]model.Person, error) {
	recs, err := q.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}
	out := make([]model.Person, len(recs))
	for i, r := range recs {
		out[i] = r.Person()
	}
	return out, nil
}

func (q *Records) Remove(ctx context.Context, id string) (model.Person, error) {
	r, err := q.store.Delete(ctx, id)
	if errors.Is(err, records.ErrNotFound) {
		return model.Person{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("store delete: %w", err)
	}
	return r.Person(), nil
}

func (q *Records) Clear(ctx context.Context) (int, error) {
	return q.store.DeleteAll(ctx)
}
