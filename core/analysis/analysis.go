// Package analysis compares the dispatch strategies over random batches.
package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/model"
)

// Config describes the random batches to generate.
type Config struct {
	Batches int
	// Size is the number of trips per batch.
	Size int
	// Floors bounds origins and destinations to [0, Floors).
	Floors int
	Seed   int64
	Start  int
}

func (c Config) validate() error {
	switch {
	case c.Batches <= 0:
		return fmt.Errorf("batches must be positive")
	case c.Size <= 0:
		return fmt.Errorf("size must be positive")
	case c.Floors < 2:
		return fmt.Errorf("floors must be at least 2")
	case c.Start < 0 || c.Start >= c.Floors:
		return fmt.Errorf("start floor %d outside [0,%d)", c.Start, c.Floors)
	}
	return nil
}

// Summary describes one metric over all batches.
type Summary struct {
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

func summarize(xs []float64) Summary {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	return Summary{
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// StrategyStats aggregates one strategy.
type StrategyStats struct {
	Strategy elevator.Strategy
	Distance Summary
	Stops    Summary
	// Stranded counts riders left aboard after their batch.
	Stranded int
}

// Comparison is the result of Compare.
type Comparison struct {
	Config Config
	FIFO   StrategyStats
	SCAN   StrategyStats
	// SweepWins is the share of batches where the sweep travelled strictly
	// fewer floors, Ties the share where both travelled the same.
	SweepWins float64
	Ties      float64
	// Correlation is the Pearson correlation of per-batch distances.
	Correlation float64
}

// Compare serves identical random batches with both strategies, each on a
// fresh car at cfg.Start, and aggregates distance and stops.
func Compare(ctx context.Context, cfg Config) (Comparison, error) {
	if err := cfg.validate(); err != nil {
		return Comparison{}, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	var (
		fifoDist, scanDist   = make([]float64, cfg.Batches), make([]float64, cfg.Batches)
		fifoStops, scanStops = make([]float64, cfg.Batches), make([]float64, cfg.Batches)
		wins, ties           int
		stranded             = map[elevator.Strategy]int{}
	)
	for b := 0; b < cfg.Batches; b++ {
		batch, err := randomBatch(rng, cfg)
		if err != nil {
			return Comparison{}, err
		}
		for _, s := range []elevator.Strategy{elevator.StrategyFIFO, elevator.StrategySCAN} {
			rep, left, err := serve(ctx, s, cfg.Start, batch)
			if err != nil {
				return Comparison{}, err
			}
			stranded[s] += left
			if s == elevator.StrategyFIFO {
				fifoDist[b], fifoStops[b] = float64(rep.Distance), float64(rep.Stops)
			} else {
				scanDist[b], scanStops[b] = float64(rep.Distance), float64(rep.Stops)
			}
		}
		switch {
		case scanDist[b] < fifoDist[b]:
			wins++
		case scanDist[b] == fifoDist[b]:
			ties++
		}
	}
	out := Comparison{
		Config:    cfg,
		FIFO:      StrategyStats{Strategy: elevator.StrategyFIFO, Distance: summarize(fifoDist), Stops: summarize(fifoStops), Stranded: stranded[elevator.StrategyFIFO]},
		SCAN:      StrategyStats{Strategy: elevator.StrategySCAN, Distance: summarize(scanDist), Stops: summarize(scanStops), Stranded: stranded[elevator.StrategySCAN]},
		SweepWins: float64(wins) / float64(cfg.Batches),
		Ties:      float64(ties) / float64(cfg.Batches),
	}
	if cfg.Batches > 1 {
		out.Correlation = stat.Correlation(fifoDist, scanDist, nil)
	}
	return out, nil
}

func randomBatch(rng *rand.Rand, cfg Config) ([]model.Person, error) {
	batch := make([]model.Person, cfg.Size)
	for i := range batch {
		p, err := model.Trip(fmt.Sprintf("P%d", i+1), rng.Intn(cfg.Floors), rng.Intn(cfg.Floors))
		if err != nil {
			return nil, err
		}
		batch[i] = p
	}
	return batch, nil
}

func serve(ctx context.Context, s elevator.Strategy, start int, batch []model.Person) (elevator.Report, int, error) {
	car := elevator.New(elevator.WithStartFloor(start))
	for _, p := range batch {
		if _, err := car.Enqueue(ctx, p); err != nil {
			return elevator.Report{}, 0, err
		}
	}
	rep, err := car.Serve(ctx, s, elevator.ServeOptions{})
	if err != nil {
		return rep, 0, err
	}
	riders, err := car.Riders(ctx)
	return rep, len(riders), err
}
