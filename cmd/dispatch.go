package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lift/app"
	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/infra/logger"
	"github.com/kilianp07/lift/pkg/export"
)

var dispatchFlags struct {
	strategy string
	time     string
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Serve the remote pending queue once",
	RunE:  dispatchRemote,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchFlags.strategy, "strategy", "", "strategy (defaults to car.strategy)")
	dispatchCmd.Flags().StringVar(&dispatchFlags.time, "time", "", "idle policy time HH:MM (defaults to car.idle_time)")
	rootCmd.AddCommand(dispatchCmd)
}

func dispatchRemote(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is not configured")
	}
	cfg.Car.Storage = config.StorageRemote

	log := logger.New("dispatch-command")
	queues, err := app.NewQueues(cfg, nil, logger.New("recordclient"))
	if err != nil {
		return err
	}
	defer queues.Close()

	name := cfg.Car.Strategy
	if dispatchFlags.strategy != "" {
		name = dispatchFlags.strategy
	}
	strategy, err := elevator.ParseStrategy(name)
	if err != nil {
		return err
	}
	opts := elevator.ServeOptions{OnEvent: func(ev events.Event) {
		fmt.Fprintln(cmd.OutOrStdout(), events.Format(ev))
	}}
	clock := cfg.Car.IdleTime
	if dispatchFlags.time != "" {
		clock = dispatchFlags.time
	}
	if clock != "" {
		opts.Time = elevator.Clock(clock)
	}

	car := elevator.New(
		elevator.WithQueues(queues.Pending, queues.Aboard),
		elevator.WithStartFloor(cfg.Car.StartFloor),
		elevator.WithLogger(log),
	)
	if _, err := car.Serve(ctx, strategy, opts); err != nil {
		return err
	}
	snap, err := car.Snapshot(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	return export.WriteSummary(cmd.OutOrStdout(), snap)
}
