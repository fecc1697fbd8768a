// Package queue defines the storage capability used by the elevator core for
// its pending requests and its riders, with an in-process implementation and
// an adapter over any records.Store (SQLite or the remote record store).
package queue

import (
	"context"
	"errors"

	"github.com/kilianp07/lift/core/model"
)

// ErrNotFound is returned by Remove for an unknown id.
var ErrNotFound = errors.New("queue entry not found")

// Queue is an ordered collection of people. Add assigns the ID and CreatedAt
// of the stored entry and returns it.
type Queue interface {
	Add(ctx context.Context, p model.Person) (model.Person, error)
	List(ctx context.Context) ([]model.Person, error)
	Remove(ctx context.Context, id string) (model.Person, error)
	Clear(ctx context.Context) (int, error)
}
