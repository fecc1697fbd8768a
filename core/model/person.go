package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidName is returned when a person has no usable name.
	ErrInvalidName = errors.New("person name must be a non-empty string")
	// ErrNoDropOff is returned when a trip has no destination yet.
	ErrNoDropOff = errors.New("person has no drop-off floor")
	// ErrDropOffAlreadySet is returned when a destination is changed mid-trip.
	ErrDropOffAlreadySet = errors.New("drop-off floor already set")
)

// Person is a transportation request: someone waiting on Floor who wants to
// be carried to DropOff. While in the car the same value is a rider.
type Person struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Floor     int       `json:"currentFloor"`
	DropOff   *int      `json:"dropOffFloor"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewPerson returns a person waiting on floor with no destination yet.
func NewPerson(name string, floor int) (Person, error) {
	if strings.TrimSpace(name) == "" {
		return Person{}, ErrInvalidName
	}
	return Person{Name: name, Floor: floor}, nil
}

// Trip is a shorthand for NewPerson followed by RequestDropOff.
func Trip(name string, from, to int) (Person, error) {
	p, err := NewPerson(name, from)
	if err != nil {
		return Person{}, err
	}
	if err := p.RequestDropOff(to); err != nil {
		return Person{}, err
	}
	return p, nil
}

// RequestDropOff sets the destination. Once set it cannot change.
func (p *Person) RequestDropOff(floor int) error {
	if p.DropOff != nil && *p.DropOff != floor {
		return fmt.Errorf("%w: %d", ErrDropOffAlreadySet, *p.DropOff)
	}
	f := floor
	p.DropOff = &f
	return nil
}

// DropOffFloor returns the destination and whether it was requested.
func (p Person) DropOffFloor() (int, bool) {
	if p.DropOff == nil {
		return 0, false
	}
	return *p.DropOff, true
}

// Validate checks that the person can be enqueued.
func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.DropOff == nil {
		return ErrNoDropOff
	}
	return nil
}

func (p Person) String() string {
	if to, ok := p.DropOffFloor(); ok {
		return fmt.Sprintf("%s (%d->%d)", p.Name, p.Floor, to)
	}
	return fmt.Sprintf("%s (%d->?)", p.Name, p.Floor)
}
