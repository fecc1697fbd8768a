package elevator

import "sync"

// Guard serializes access to an Elevator shared between goroutines, such as
// HTTP handlers. Every call to Do runs to completion before the next starts.
type Guard struct {
	mu sync.Mutex
	e  *Elevator
}

// NewGuard wraps e.
func NewGuard(e *Elevator) *Guard { return &Guard{e: e} }

// Do runs fn with exclusive access to the elevator.
func (g *Guard) Do(fn func(*Elevator) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.e)
}
