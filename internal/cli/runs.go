package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, inspect or delete published runs",
	Long: `Manage runs stored by "rastreador publish".

Subcommands:
  list    List published runs (default)
  show    Show a run header and its top alerts
  delete  Delete a run and its alerts

Examples:
  rastreador runs
  rastreador runs show 0b7c9e0e-5d0e-4c55-9d7e-3f4f5b2a9c11
  rastreador runs delete 0b7c9e0e-5d0e-4c55-9d7e-3f4f5b2a9c11`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a published run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a published run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max results")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max results")
	runsShowCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max alerts")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	runs, err := client.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	r := newRenderer(cmd.OutOrStdout(), mask)
	if len(runs) == 0 {
		fmt.Fprintln(r.w, "No published runs.")
		return nil
	}

	r.heading("Published runs (%d)", len(runs))
	tw := r.table()
	fmt.Fprintln(tw, "RUN\tGENERATED\tWINDOW\tDIRECTION\tALERTS\tPARTIAL")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%t\n",
			run.RunID, run.GeneratedAt.Format("2006-01-02 15:04"), run.WindowDays, run.Direction, run.AlertCount, run.Partial)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	run, err := client.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	alerts, err := client.RunAlerts(ctx, args[0], runsLimit)
	if err != nil {
		return err
	}

	r := newRenderer(cmd.OutOrStdout(), mask)
	r.heading("Run %s", run.RunID)
	fmt.Fprintf(r.w, "Generated:  %s\n", run.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.w, "Published:  %s\n", run.PublishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.w, "Donations:  %d accepted of %d rows\n", run.DonationsAccepted, run.DonationRows)
	fmt.Fprintf(r.w, "Contracts:  %d accepted of %d rows\n", run.ContractsAccepted, run.ContractRows)
	fmt.Fprintf(r.w, "Window:     %d days, %s\n", run.WindowDays, run.Direction)
	for _, w := range run.Warnings {
		r.hint("warning: %s", w)
	}
	fmt.Fprintln(r.w)

	tw := r.table()
	fmt.Fprintln(tw, "#\tENTITY\tNAME\tPARTY\tDONATION\tAWARD\tDAYS\tSEVERITY")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%+d\t%s\n",
			a.Rank, r.id(a.EntityID), truncate(a.EntityName, 30), a.Party,
			a.DonationDate.Format("2006-01-02"), a.AwardDate.Format("2006-01-02"),
			a.DeltaDays, r.severity(a.Severity))
	}
	return tw.Flush()
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	if err := client.DeleteRun(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}
