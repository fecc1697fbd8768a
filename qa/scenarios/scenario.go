// Package scenarios loads YAML dispatch scenarios and replays them against a
// fresh car. The fixtures next to this file pin the expected distances and
// stop counts of both schedulers.
package scenarios

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/model"
)

type RequestDef struct {
	Name string `yaml:"name"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

func (r RequestDef) ToModel() (model.Person, error) {
	return model.Trip(r.Name, r.From, r.To)
}

// Expected holds the outcome a scenario asserts. Nil fields are not checked.
type Expected struct {
	Distance   *int     `yaml:"distance,omitempty"`
	Stops      *int     `yaml:"stops,omitempty"`
	EndFloor   *int     `yaml:"end_floor,omitempty"`
	IdleReturn *bool    `yaml:"idle_return,omitempty"`
	Riders     *int     `yaml:"riders,omitempty"`
	Events     []string `yaml:"events,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	StartFloor  int          `yaml:"start_floor"`
	Strategy    string       `yaml:"strategy"`
	Time        string       `yaml:"time,omitempty"`
	Requests    []RequestDef `yaml:"requests"`
	Expected    Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if _, err := elevator.ParseStrategy(sc.Strategy); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Check compares a run with the expectations and joins every mismatch.
func (e Expected) Check(res *Result) error {
	var errs []error
	cmp := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Errorf("%s: want %d, got %d", name, *want, got))
		}
	}
	cmp("distance", e.Distance, res.Report.Distance)
	cmp("stops", e.Stops, res.Report.Stops)
	cmp("end_floor", e.EndFloor, res.Report.EndFloor)
	cmp("riders", e.Riders, len(res.Snapshot.Riders))
	if e.IdleReturn != nil && *e.IdleReturn != res.Report.IdleReturn {
		errs = append(errs, fmt.Errorf("idle_return: want %v, got %v", *e.IdleReturn, res.Report.IdleReturn))
	}
	if len(e.Events) > 0 {
		got := make([]string, 0, len(res.Events))
		for _, ev := range res.Events {
			if ev.Kind != events.KindRequestAdded {
				got = append(got, string(ev.Kind))
			}
		}
		if !slices.Equal(e.Events, got) {
			errs = append(errs, fmt.Errorf("events: want %v, got %v", e.Events, got))
		}
	}
	return errors.Join(errs...)
}
