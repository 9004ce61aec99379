package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/raphaelgruber/rastreador/internal/ranking"
	"github.com/spf13/cobra"
)

var (
	alertsParty string
	alertsAudit bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List flagged donation/award pairs by severity",
	Long: `List flagged pairs ordered by severity, then by the smaller time delta,
then by the larger amount.

With --audit, list instead the pairs that were recorded but not flagged,
such as contracts awarded before the donation under the before-only filter.

Examples:
  rastreador alerts -d donaciones.csv -c contratos/ --top 20
  rastreador alerts -d donaciones.csv -c contratos/ --party PLN
  rastreador alerts -d donaciones.csv -c contratos/ --audit --mask`,
	Args: cobra.NoArgs,
	RunE: runAlerts,
}

func init() {
	alertsCmd.Flags().StringVarP(&alertsParty, "party", "p", "", "only alerts for donations to this party")
	alertsCmd.Flags().BoolVar(&alertsAudit, "audit", false, "show the unflagged audit trail instead")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	topN := runCfg.TopN
	if alertsParty != "" {
		// Rank everything so the party filter is applied before the cut.
		runCfg.TopN = 0
	}
	report, err := analyze(context.Background())
	if err != nil {
		return err
	}
	r := newRenderer(cmd.OutOrStdout(), mask)

	if alertsAudit {
		printAudit(r, report.Audit, alertsParty)
		return nil
	}

	alerts := ranking.Rank(report.Alerts, ranking.Options{TopN: topN, Party: alertsParty})
	if len(alerts) == 0 {
		fmt.Fprintln(r.w, "No alerts.")
		return nil
	}
	r.heading("Alerts (%d)", len(alerts))
	r.pairs(alerts)
	if verbose {
		fmt.Fprintln(r.w)
		printWarnings(r.w, report)
	}
	return nil
}

// printAudit lists unflagged pairs, narrowed to one party when party is set.
func printAudit(r *renderer, pairs []models.ProximityPair, party string) {
	audit := ranking.ByParty(pairs, party)
	if len(audit) == 0 {
		fmt.Fprintln(r.w, "No unflagged pairs recorded.")
		return
	}
	r.heading("Audit trail (%d)", len(audit))
	r.pairs(audit)
}
