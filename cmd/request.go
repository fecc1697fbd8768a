package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lift/core/records"
	"github.com/kilianp07/lift/infra/logger"
	"github.com/kilianp07/lift/infra/recordclient"
)

var requestFlags struct {
	name     string
	from, to int
	riders   bool
}

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage requests on the remote record store",
}

var requestAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a pickup request",
	RunE:  requestAdd,
}

var requestLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List pending requests",
	RunE:  requestLs,
}

func init() {
	f := requestAddCmd.Flags()
	f.StringVar(&requestFlags.name, "name", "", "name of the person")
	f.IntVar(&requestFlags.from, "from", 0, "pickup floor")
	f.IntVar(&requestFlags.to, "to", 0, "drop-off floor")
	_ = requestAddCmd.MarkFlagRequired("name")
	_ = requestAddCmd.MarkFlagRequired("to")
	requestLsCmd.Flags().BoolVar(&requestFlags.riders, "riders", false, "list riders instead of requests")
	requestCmd.AddCommand(requestAddCmd, requestLsCmd)
	rootCmd.AddCommand(requestCmd)
}

func remoteClient() (*recordclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("remote.base_url is not configured")
	}
	return recordclient.New(cfg.Remote, logger.New("recordclient"))
}

func requestAdd(cmd *cobra.Command, args []string) error {
	client, err := remoteClient()
	if err != nil {
		return err
	}
	rec, err := client.Store(records.Requests).Create(cmd.Context(), records.Input{
		Name:         requestFlags.name,
		CurrentFloor: requestFlags.from,
		DropOffFloor: requestFlags.to,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Request added: %s (%s, %d -> %d)\n", rec.Name, rec.ID, rec.CurrentFloor, rec.DropOffFloor)
	return nil
}

func requestLs(cmd *cobra.Command, args []string) error {
	client, err := remoteClient()
	if err != nil {
		return err
	}
	col := records.Requests
	if requestFlags.riders {
		col = records.Riders
	}
	recs, err := client.Store(col).List(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFROM\tTO\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.Name, r.CurrentFloor, r.DropOffFloor, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
