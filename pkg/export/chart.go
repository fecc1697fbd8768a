package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/lift/core/events"
)

// FloorSeries returns the car floor after each move, starting with the
// origin of the first move. The x axis holds event sequence numbers.
func FloorSeries(evs []events.Event) (xAxis []string, floors []int) {
	for _, e := range evs {
		if e.Kind != events.KindMove {
			continue
		}
		if len(floors) == 0 {
			xAxis = append(xAxis, "0")
			floors = append(floors, e.From)
		}
		xAxis = append(xAxis, strconv.FormatUint(e.Seq, 10))
		floors = append(floors, e.To)
	}
	return xAxis, floors
}

// WriteFloorChart renders the floor-over-time line chart as an HTML page.
// Stops are marked on a second series.
func WriteFloorChart(w io.Writer, title string, evs []events.Event) error {
	xAxis, floors := FloorSeries(evs)
	if len(floors) == 0 {
		return fmt.Errorf("no moves to chart")
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Event"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Floor"}),
	)

	floorData := make([]opts.LineData, len(floors))
	for i, f := range floors {
		floorData[i] = opts.LineData{Value: f}
	}
	stopData := make([]opts.LineData, len(floors))
	stopped := stopSeqs(evs)
	for i := range xAxis {
		if stopped[xAxis[i]] {
			stopData[i] = opts.LineData{Value: floors[i]}
		} else {
			stopData[i] = opts.LineData{Value: "-"}
		}
	}

	line.SetXAxis(xAxis).
		AddSeries("Floor", floorData).
		AddSeries("Stop", stopData)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// stopSeqs maps the sequence number of each move to whether a stop followed it.
func stopSeqs(evs []events.Event) map[string]bool {
	out := map[string]bool{}
	var lastMove string
	for _, e := range evs {
		switch e.Kind {
		case events.KindMove:
			lastMove = strconv.FormatUint(e.Seq, 10)
		case events.KindStop:
			if lastMove != "" {
				out[lastMove] = true
			}
		}
	}
	return out
}
