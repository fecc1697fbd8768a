// Package plugins maps configured backend names to constructors for the
// event journal and the record stores.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/journal"
	"github.com/kilianp07/lift/core/records"
)

// JournalFactory builds an event journal from its configuration.
type JournalFactory func(cfg config.JournalConfig) (journal.Store, error)

// StoreFactory builds the request and rider stores of one backend.
type StoreFactory func(cfg config.StoreConfig) (*Stores, error)

// Stores holds one store per collection and releases their backend.
type Stores struct {
	Requests records.Store
	Riders   records.Store
	closers  []func() error
}

// ByCollection returns the stores keyed by collection.
func (s *Stores) ByCollection() map[records.Collection]records.Store {
	return map[records.Collection]records.Store{records.Requests: s.Requests, records.Riders: s.Riders}
}

// Close releases the backend.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

var (
	Journals     = map[string]JournalFactory{}
	RecordStores = map[string]StoreFactory{}
)

func RegisterJournal(name string, f JournalFactory)   { Journals[name] = f }
func RegisterRecordStore(name string, f StoreFactory) { RecordStores[name] = f }

// NewJournal builds the journal selected by cfg.Backend.
func NewJournal(cfg config.JournalConfig) (journal.Store, error) {
	f, ok := Journals[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown journal backend %q (known: %s)", cfg.Backend, names(Journals))
	}
	return f(cfg)
}

// NewRecordStores builds the stores selected by cfg.Backend.
func NewRecordStores(cfg config.StoreConfig) (*Stores, error) {
	f, ok := RecordStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown record store backend %q (known: %s)", cfg.Backend, names(RecordStores))
	}
	return f(cfg)
}

func names[F any](m map[string]F) string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
