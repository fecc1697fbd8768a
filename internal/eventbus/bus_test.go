package eventbus

import (
	"testing"

	"github.com/kilianp07/lift/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[events.Event](0)
	ch := bus.Subscribe()
	var obs events.Observer = bus.Publish
	obs(events.Event{Seq: 1, Kind: events.KindStop})
	v := <-ch
	if v.Seq != 1 || v.Kind != events.KindStop {
		t.Fatalf("unexpected event %+v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 drops got %d", got)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected oldest value kept, got %d", v)
	}
}

func TestBusClose(t *testing.T) {
	bus := New[int](1)
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Publish(1)
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close should return a closed channel")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New[float64](1)
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestBusUnboundedKeepsEverything(t *testing.T) {
	bus := New[int](1)
	ch := bus.SubscribeUnbounded()
	for i := 0; i < 500; i++ {
		bus.Publish(i)
	}
	bus.Close()
	n := 0
	for v := range ch {
		if v != n {
			t.Fatalf("out of order: got %d want %d", v, n)
		}
		n++
	}
	if n != 500 {
		t.Fatalf("received %d values, want 500", n)
	}
	if got := bus.Dropped(); got != 0 {
		t.Fatalf("unbounded subscriber counted %d drops", got)
	}
}

func TestBusUnboundedUnsubscribe(t *testing.T) {
	bus := New[int](0)
	ch := bus.SubscribeUnbounded()
	bus.Publish(1)
	bus.Publish(2)
	bus.Unsubscribe(ch)
	for range ch {
	}
	bus.Publish(3)
	bus.Close()
}
