// Package export writes the events of a run as JSON, CSV, a text summary or
// an HTML chart of the car position.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
)

// WriteJSON writes the events to w as a JSON array.
func WriteJSON(w io.Writer, evs []events.Event) error {
	if evs == nil {
		evs = []events.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(evs)
}

var csvHeader = []string{"seq", "time", "type", "from", "to", "distance", "floor", "total_stops", "person_id", "person_name"}

// WriteCSV writes one row per event with a header line.
func WriteCSV(w io.Writer, evs []events.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range evs {
		rec := []string{
			strconv.FormatUint(e.Seq, 10),
			e.Time.Format(time.RFC3339Nano),
			string(e.Kind),
			strconv.Itoa(e.From),
			strconv.Itoa(e.To),
			strconv.Itoa(e.Distance),
			strconv.Itoa(e.Floor),
			strconv.Itoa(e.TotalStops),
			e.PersonID,
			e.PersonName,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEvents prints one formatted line per event.
func WriteEvents(w io.Writer, evs []events.Event) error {
	for _, e := range evs {
		if _, err := fmt.Fprintln(w, events.Format(e)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints the end state of a run.
func WriteSummary(w io.Writer, snap elevator.Snapshot) error {
	_, err := fmt.Fprintf(w, "%s\nFinal floor: %d\nTotal stops: %d\nTotal floors traversed: %d\nRequests remaining: %d\nRiders remaining: %d\n",
		strings.Repeat("-", 60), snap.Floor, snap.TotalStops, snap.TotalFloorsTraversed, len(snap.Requests), len(snap.Riders))
	return err
}
