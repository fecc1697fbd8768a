package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lift/infra/logger"
	"github.com/kilianp07/lift/pkg/export"
	"github.com/kilianp07/lift/qa/scenarios"
)

var simulateFlags struct {
	strategy string
	time     string
	csv      string
	json     string
	chart    string
	quiet    bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay a scenario and print its events and summary",
	Args:  cobra.ExactArgs(1),
	RunE:  simulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.strategy, "strategy", "", "override the scenario strategy (fifo|scan)")
	f.StringVar(&simulateFlags.time, "time", "", "override the idle policy time (HH:MM)")
	f.StringVar(&simulateFlags.csv, "csv", "", "write events as CSV to this file")
	f.StringVar(&simulateFlags.json, "json", "", "write events as JSON to this file")
	f.StringVar(&simulateFlags.chart, "chart", "", "write an HTML floor chart to this file")
	f.BoolVarP(&simulateFlags.quiet, "quiet", "q", false, "print the summary only")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(args[0])
	if err != nil {
		return err
	}
	res, err := scenarios.Run(cmd.Context(), sc, scenarios.Options{
		Strategy: simulateFlags.strategy,
		Time:     simulateFlags.time,
		Logger:   logger.New("simulate"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario: %s (%s)\n", sc.Name, res.Report.Strategy)
	if !simulateFlags.quiet {
		if err := export.WriteEvents(out, res.Events); err != nil {
			return err
		}
	}
	if err := export.WriteSummary(out, res.Snapshot); err != nil {
		return err
	}
	if err := sc.Expected.Check(res); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "expectations not met: %v\n", err)
	}

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{simulateFlags.csv, func(w io.Writer) error { return export.WriteCSV(w, res.Events) }},
		{simulateFlags.json, func(w io.Writer) error { return export.WriteJSON(w, res.Events) }},
		{simulateFlags.chart, func(w io.Writer) error { return export.WriteFloorChart(w, sc.Name, res.Events) }},
	}
	for _, wr := range writers {
		if wr.path == "" {
			continue
		}
		if err := writeFile(wr.path, wr.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
