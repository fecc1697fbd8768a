package journal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/lift/core/events"
)

func sample(base time.Time) []events.Event {
	return []events.Event{
		{Seq: 1, Kind: events.KindRequestAdded, Time: base, PersonID: "req_1", PersonName: "Bob"},
		{Seq: 2, Kind: events.KindMove, Time: base.Add(time.Second), From: 0, To: 3, Distance: 3, Floor: 3},
		{Seq: 3, Kind: events.KindStop, Time: base.Add(2 * time.Second), Floor: 3, TotalStops: 1},
		{Seq: 4, Kind: events.KindPickup, Time: base.Add(3 * time.Second), Floor: 3, PersonID: "rider_1", PersonName: "Bob"},
	}
}

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	jsonl, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "events.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = jsonl.Close()
		_ = sqlite.Close()
	})
	return map[string]Store{"jsonl": jsonl, "sqlite": sqlite}
}

func TestStore_PersistQuery(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, ev := range sample(base) {
				if err := store.Append(ctx, ev); err != nil {
					t.Fatalf("append: %v", err)
				}
			}
			tests := []struct {
				q    Query
				want []uint64
			}{
				{Query{}, []uint64{1, 2, 3, 4}},
				{Query{Kind: events.KindMove}, []uint64{2}},
				{Query{Person: "Bob"}, []uint64{1, 4}},
				{Query{Person: "rider_1"}, []uint64{4}},
				{Query{Start: base.Add(2 * time.Second)}, []uint64{3, 4}},
				{Query{End: base.Add(time.Second)}, []uint64{1, 2}},
			}
			for _, tt := range tests {
				out, err := store.Query(ctx, tt.q)
				if err != nil {
					t.Fatalf("query: %v", err)
				}
				if len(out) != len(tt.want) {
					t.Fatalf("query %+v: got %d events want %d", tt.q, len(out), len(tt.want))
				}
				for i, ev := range out {
					if ev.Seq != tt.want[i] {
						t.Errorf("query %+v: event %d seq %d want %d", tt.q, i, ev.Seq, tt.want[i])
					}
				}
			}
			out, _ := store.Query(ctx, Query{Kind: events.KindMove})
			if out[0].From != 0 || out[0].To != 3 || out[0].Distance != 3 {
				t.Errorf("move fields lost: %+v", out[0])
			}
		})
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	ev := events.Event{Kind: events.KindPickup, Time: time.Now(), PersonName: strings.Repeat("x", 300)}
	const n = 5000
	for i := 0; i < n; i++ {
		ev.Seq = uint64(i + 1)
		if err := store.Append(context.Background(), ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*"))
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := store.Query(context.Background(), Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != n {
		t.Fatalf("expected %d events across files, got %d", n, len(out))
	}
}

type failingStore struct{ Store }

func (failingStore) Append(context.Context, events.Event) error { return errors.New("disk full") }

type warnLog struct {
	warned int
}

func (*warnLog) Debugf(string, ...any)         {}
func (*warnLog) Debugw(string, map[string]any) {}
func (*warnLog) Infof(string, ...any)          {}
func (w *warnLog) Warnf(string, ...any)        { w.warned++ }
func (*warnLog) Errorf(string, ...any)         {}

func TestObserver(t *testing.T) {
	stores := storesUnderTest(t)
	obs := Observer(stores["sqlite"], nil)
	for _, ev := range sample(time.Now()) {
		obs(ev)
	}
	out, err := stores["sqlite"].Query(context.Background(), Query{})
	if err != nil || len(out) != 4 {
		t.Fatalf("got %d events, err %v", len(out), err)
	}

	log := &warnLog{}
	Observer(failingStore{}, log)(events.Event{Kind: events.KindStop})
	if log.warned != 1 {
		t.Fatalf("append failure not logged")
	}
}
