package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/rastreador/internal/metrics"
	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis and print a summary",
	Long: `Normalize both datasets, match entities, score donation/award proximity
and print headline figures, the top alerts and the most exposed entities.

Examples:
  rastreador analyze -d donaciones.csv -c contratos/
  rastreador analyze -d donaciones.csv -c contratos.json --window 60 --direction both
  rastreador analyze -d donaciones.csv -c contratos/ --config costa-rica.yaml -v`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	report, err := analyze(context.Background())
	if err != nil {
		return err
	}
	printSummary(newRenderer(cmd.OutOrStdout(), mask), report, verbose)
	return nil
}

func printSummary(r *renderer, report *service.Report, detailed bool) {
	c := report.Counts
	st := report.Summary.Stats

	r.heading("Run %s", report.RunID)
	if report.Partial {
		r.hint("Partial results: see warnings below")
	}
	fmt.Fprintf(r.w, "Donations:  %d accepted of %d rows\n", c.DonationsAccepted, c.DonationRows)
	fmt.Fprintf(r.w, "Contracts:  %d accepted of %d rows\n", c.ContractsAccepted, c.ContractRows)
	fmt.Fprintf(r.w, "Entities:   %d (%d both donor and contractor)\n", report.Index.Entities, report.Index.Matched)
	fmt.Fprintf(r.w, "Donated:    %s total, %s mean, %s max\n",
		formatAmount(st.TotalDonated), formatAmount(st.MeanDonation), formatAmount(st.MaxDonation))
	fmt.Fprintf(r.w, "Donors:     %d (%d repeat)\n", st.Donors, st.RepeatDonors)
	if st.FirstDate != nil && st.LastDate != nil {
		fmt.Fprintf(r.w, "Span:       %s to %s\n", st.FirstDate.Format("2006-01-02"), st.LastDate.Format("2006-01-02"))
	}
	as := report.AlertStats
	fmt.Fprintf(r.w, "Alerts:     %d flagged, %d in audit trail (window %d days, %s)\n",
		as.Flagged, len(report.Audit), report.Config.WindowDays, report.Config.Direction)
	if as.Flagged > 0 {
		fmt.Fprintf(r.w, "Closest:    %d days, %.1f days on average\n", as.MinAbsDelta, as.MeanAbsDelta)
		fmt.Fprintf(r.w, "Before:     %d/%d donations made before the award\n", as.DonationFirst, as.Flagged)
	}
	fmt.Fprintln(r.w)

	if len(report.Alerts) > 0 {
		r.heading("Top alerts")
		r.pairs(report.Alerts[:min(10, len(report.Alerts))])
		fmt.Fprintln(r.w)
	}

	if len(report.Risks) > 0 {
		r.heading("Entities by share of flagged contracts")
		printRisks(r, report.Risks[:min(10, len(report.Risks))])
		fmt.Fprintln(r.w)
	}

	printWarnings(r.w, report)

	if detailed {
		printTimings(r, report)
	}
}

func printWarnings(w io.Writer, report *service.Report) {
	if len(report.Warnings) == 0 {
		return
	}
	fmt.Fprintln(w, "Warnings:")
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "  - %s\n", warn)
	}
	fmt.Fprintln(w)
}

type timingRow struct {
	stage string
	snap  *metrics.StageSnapshot
}

func printTimings(r *renderer, report *service.Report) {
	t := report.Timings
	rows := []timingRow{
		{metrics.StageNormalize, t.Normalize},
		{metrics.StageIndex, t.Index},
		{metrics.StageScore, t.Score},
		{metrics.StageAggregate, t.Aggregate},
		{metrics.StageRank, t.Rank},
		{metrics.StagePublish, t.Publish},
	}

	r.heading("Timings")
	tw := r.table()
	fmt.Fprintln(tw, "STAGE\tITEMS\tTIME (ms)")
	for _, row := range rows {
		if row.snap == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", row.stage, row.snap.Items, row.snap.TotalTimeMs)
	}
	_ = tw.Flush()
}
