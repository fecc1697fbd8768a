package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lift/core/analysis"
)

var compareFlags analysis.Config

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare both strategies over random batches",
	RunE:  compare,
}

func init() {
	f := compareCmd.Flags()
	f.IntVar(&compareFlags.Batches, "batches", 1000, "number of random batches")
	f.IntVar(&compareFlags.Size, "size", 6, "trips per batch")
	f.IntVar(&compareFlags.Floors, "floors", 10, "number of floors")
	f.Int64Var(&compareFlags.Seed, "seed", 1, "random seed")
	f.IntVar(&compareFlags.Start, "start", 0, "start floor of every batch")
	rootCmd.AddCommand(compareCmd)
}

func compare(cmd *cobra.Command, args []string) error {
	res, err := analysis.Compare(cmd.Context(), compareFlags)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\tdistance mean\tstddev\tmedian\tstops mean\tstddev\tstranded")
	for _, s := range []analysis.StrategyStats{res.FIFO, res.SCAN} {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.1f\t%.2f\t%.2f\t%d\n",
			s.Strategy, s.Distance.Mean, s.Distance.StdDev, s.Distance.Median, s.Stops.Mean, s.Stops.StdDev, s.Stranded)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sweep shorter in %.1f%% of batches, tied in %.1f%%\n", res.SweepWins*100, res.Ties*100)
	return nil
}
