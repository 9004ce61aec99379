package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/rastreador/internal/db"
	"github.com/raphaelgruber/rastreador/internal/metrics"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run the analysis and store its results for the dashboard",
	Long: `Run the analysis and store the run header, ranked alerts, period
summaries and entity levels in SurrealDB. Analyses never read stored runs.

Connection settings come from SURREALDB_URL, SURREALDB_NAMESPACE,
SURREALDB_DATABASE, SURREALDB_USER, SURREALDB_PASS and SURREALDB_AUTH_LEVEL.

Examples:
  rastreador publish -d donaciones.csv -c contratos/
  rastreador publish -d donaciones.csv -c contratos/ --mask`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	report, err := analyze(ctx)
	if err != nil {
		return err
	}

	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	start := time.Now()
	if err := client.SaveReport(ctx, report, db.SaveOptions{Mask: mask}); err != nil {
		return err
	}
	collector.RecordTiming(metrics.StagePublish, time.Since(start), len(report.Alerts))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Published run %s (%d alerts)\n", report.RunID, len(report.Alerts))
	if report.Partial {
		printWarnings(out, report)
	}
	if verbose {
		if snap := collector.Snapshot().Publish; snap != nil {
			fmt.Fprintf(out, "Publish took %d ms\n", snap.TotalTimeMs)
		}
	}
	return nil
}
