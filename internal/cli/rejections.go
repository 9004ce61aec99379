package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rejectionsCmd = &cobra.Command{
	Use:   "rejections",
	Short: "List input rows excluded during normalization",
	Long: `List every row that failed validation: a missing or unparsable
identifier, amount or date, a negative amount, or an ambiguous day/month date.

Examples:
  rastreador rejections -d donaciones.csv -c contratos/`,
	Args: cobra.NoArgs,
	RunE: runRejections,
}

func runRejections(cmd *cobra.Command, args []string) error {
	report, err := analyze(context.Background())
	if err != nil {
		return err
	}
	r := newRenderer(cmd.OutOrStdout(), mask)

	if len(report.Rejections) == 0 {
		fmt.Fprintln(r.w, "No rows rejected.")
		return nil
	}
	r.heading("Rejected rows (%d)", len(report.Rejections))
	tw := r.table()
	fmt.Fprintln(tw, "DATASET\tROW\tFIELD\tREASON")
	for _, rej := range report.Rejections {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", rej.Dataset, rej.Row, rej.Field, rej.Reason)
	}
	return tw.Flush()
}
