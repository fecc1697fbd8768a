// Package eventbus fans values out to in-process subscribers without ever
// blocking the publisher. The car publishes its events here so slow consumers
// such as the MQTT relay cannot stall dispatch. Buffered subscribers may miss
// values; unbounded subscribers queue everything in order.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the subscriber channel capacity used when none is given.
const DefaultBuffer = 64

// Bus is a type-safe publish/subscribe bus for values of type T.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	queues  []*queue[T]
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// New creates a Bus whose subscriber channels hold buffer values. A buffer
// below one selects DefaultBuffer.
func New[T any](buffer int) *Bus[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{buffer: buffer}
}

// Publish sends v to all subscribers. A subscriber whose channel is full
// misses v and the drop is counted.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped.Add(1)
		}
	}
	for _, q := range b.queues {
		q.push(v)
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was
// full.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber and returns its channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// SubscribeUnbounded registers a subscriber that receives every value in
// publish order. Values wait in memory until read, so the subscriber must keep
// reading or Unsubscribe.
func (b *Bus[T]) SubscribeUnbounded() <-chan T {
	q := newQueue[T]()
	b.mu.Lock()
	if b.closed {
		q.close()
	}
	b.queues = append(b.queues, q)
	b.mu.Unlock()
	return q.out
}

// Unsubscribe removes the subscriber and closes its channel. Values still
// queued for an unbounded subscriber are discarded.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, q := range b.queues {
		if q.out == sub {
			b.queues = append(b.queues[:i], b.queues[i+1:]...)
			q.stop()
			return
		}
	}
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels. Unbounded subscribers
// still receive what was queued before their channel closes.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	for _, q := range b.queues {
		q.close()
	}
}
