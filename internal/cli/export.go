package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/rastreador/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the run report as JSON and CSV files",
	Long: `Run the analysis and write its outputs to a directory:

  report.json      complete report
  alerts.csv       ranked alerts
  audit.csv        recorded but unflagged pairs
  rejections.csv   rows excluded during normalization
  periods.csv      donations per period and party
  entities.csv     donor/contractor totals per entity

Examples:
  rastreador export ./salida -d donaciones.csv -c contratos/
  rastreador export ./salida -d donaciones.csv -c contratos/ --mask`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	report, err := analyze(context.Background())
	if err != nil {
		return err
	}

	paths, err := export.Dir(args[0], report, export.Options{Mask: mask})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		for _, p := range paths {
			fmt.Fprintf(out, "  Exported: %s\n", p)
		}
	}
	fmt.Fprintf(out, "Exported run %s (%d alerts) to %s\n", report.RunID, len(report.Alerts), args[0])
	return nil
}
