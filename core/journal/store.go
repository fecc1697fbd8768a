// Package journal persists the events emitted by the car so past runs can be
// queried over HTTP.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/logger"
)

// Query filters journal entries. Zero fields match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Kind   events.Kind
	Person string
}

// Match reports whether ev passes the filter. Person matches either the
// person id or the name.
func (q Query) Match(ev events.Event) bool {
	if !q.Start.IsZero() && ev.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && ev.Time.After(q.End) {
		return false
	}
	if q.Kind != "" && ev.Kind != q.Kind {
		return false
	}
	if q.Person != "" && ev.PersonID != q.Person && ev.PersonName != q.Person {
		return false
	}
	return true
}

// Store persists events and supports querying.
type Store interface {
	Append(ctx context.Context, ev events.Event) error
	Query(ctx context.Context, q Query) ([]events.Event, error)
	Close() error
}

// Observer returns an events.Observer appending every event to s. Append
// failures are logged and otherwise ignored.
func Observer(s Store, log logger.Logger) events.Observer {
	if log == nil {
		log = logger.Nop{}
	}
	return func(ev events.Event) {
		if err := s.Append(context.Background(), ev); err != nil {
			log.Warnf("journal append %s #%d: %v", ev.Kind, ev.Seq, err)
		}
	}
}
