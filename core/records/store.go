package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/lift/core/model"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a malformed create or update payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Collection names one of the record sets kept by the store.
type Collection string

const (
	Requests Collection = "requests"
	Riders   Collection = "riders"
)

// Prefix returns the id prefix used by generated ids.
func (c Collection) Prefix() string {
	switch c {
	case Requests:
		return "req"
	case Riders:
		return "rider"
	}
	return string(c)
}

// Singular returns the human name of one record of the collection.
func (c Collection) Singular() string {
	switch c {
	case Requests:
		return "Request"
	case Riders:
		return "Rider"
	}
	return "Record"
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool { return c == Requests || c == Riders }

// Record is a persisted trip.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrentFloor int       `json:"currentFloor"`
	DropOffFloor int       `json:"dropOffFloor"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Person converts the record into the dispatch model.
func (r Record) Person() model.Person {
	to := r.DropOffFloor
	return model.Person{ID: r.ID, Name: r.Name, Floor: r.CurrentFloor, DropOff: &to, CreatedAt: r.CreatedAt}
}

// Input holds the fields of a new record.
type Input struct {
	Name         string `json:"name"`
	CurrentFloor int    `json:"currentFloor"`
	DropOffFloor int    `json:"dropOffFloor"`
}

// FromPerson builds an Input from a person with a destination.
func FromPerson(p model.Person) (Input, error) {
	to, ok := p.DropOffFloor()
	if !ok {
		return Input{}, model.ErrNoDropOff
	}
	return Input{Name: p.Name, CurrentFloor: p.Floor, DropOffFloor: to}, nil
}

// Validate checks mandatory fields.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	CurrentFloor *int    `json:"currentFloor,omitempty"`
	DropOffFloor *int    `json:"dropOffFloor,omitempty"`
}

// Validate checks the provided fields.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// Apply returns r with the patch applied.
func (p Patch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.CurrentFloor != nil {
		r.CurrentFloor = *p.CurrentFloor
	}
	if p.DropOffFloor != nil {
		r.DropOffFloor = *p.DropOffFloor
	}
	return r
}

// Store persists the records of one collection.
type Store interface {
	Create(ctx context.Context, in Input) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, id string, p Patch) (Record, error)
	Delete(ctx context.Context, id string) (Record, error)
	DeleteAll(ctx context.Context) (int, error)
}
