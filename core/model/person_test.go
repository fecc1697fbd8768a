package model

import (
	"errors"
	"testing"
)

func TestNewPerson(t *testing.T) {
	bob, err := NewPerson("Bob", 3)
	if err != nil {
		t.Fatalf("new person: %v", err)
	}
	if bob.Name != "Bob" || bob.Floor != 3 {
		t.Fatalf("unexpected person %#v", bob)
	}
	if _, ok := bob.DropOffFloor(); ok {
		t.Fatal("drop-off should be unset")
	}
	if err := bob.RequestDropOff(9); err != nil {
		t.Fatalf("request drop-off: %v", err)
	}
	if to, ok := bob.DropOffFloor(); !ok || to != 9 {
		t.Fatalf("expected drop-off 9 got %d (%v)", to, ok)
	}
}

func TestNewPerson_InvalidName(t *testing.T) {
	for _, name := range []string{"", "   "} {
		if _, err := NewPerson(name, 1); !errors.Is(err, ErrInvalidName) {
			t.Errorf("name %q: expected ErrInvalidName got %v", name, err)
		}
	}
}

func TestRequestDropOff_Immutable(t *testing.T) {
	p, err := Trip("A", 1, 4)
	if err != nil {
		t.Fatalf("trip: %v", err)
	}
	if err := p.RequestDropOff(4); err != nil {
		t.Fatalf("same floor should be accepted: %v", err)
	}
	if err := p.RequestDropOff(5); !errors.Is(err, ErrDropOffAlreadySet) {
		t.Fatalf("expected ErrDropOffAlreadySet got %v", err)
	}
	if to, _ := p.DropOffFloor(); to != 4 {
		t.Fatalf("destination changed to %d", to)
	}
}

func TestValidate(t *testing.T) {
	p, _ := NewPerson("A", 2)
	if err := p.Validate(); !errors.Is(err, ErrNoDropOff) {
		t.Fatalf("expected ErrNoDropOff got %v", err)
	}
	_ = p.RequestDropOff(0)
	if err := p.Validate(); err != nil {
		t.Fatalf("valid person rejected: %v", err)
	}
	if got := p.String(); got != "A (2->0)" {
		t.Fatalf("string %q", got)
	}
}
