package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/rastreador/internal/aggregate"
	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/spf13/cobra"
)

var (
	periodsBy         string
	periodsSort       string
	periodsActiveOnly bool
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Show donation and contract totals by period, party or year",
	Long: `Show aggregated totals. Records outside every configured period are
reported under "unassigned".

Groupings (--by):
  period     donations per administration and party (default)
  party      donations per party across all periods
  year       donations per calendar year and party
  contracts  contract awards per administration and agency

Examples:
  rastreador periods -d donaciones.csv -c contratos/
  rastreador periods -d donaciones.csv -c contratos/ --by party --active-only
  rastreador periods -d donaciones.csv -c contratos/ --by party --sort count
  rastreador periods -d donaciones.csv -c contratos/ --by contracts`,
	Args: cobra.NoArgs,
	RunE: runPeriods,
}

func init() {
	periodsCmd.Flags().StringVar(&periodsBy, "by", "period", "grouping: period, party, year or contracts")
	periodsCmd.Flags().StringVar(&periodsSort, "sort", "amount", "party order for --by party: amount or count")
	periodsCmd.Flags().BoolVar(&periodsActiveOnly, "active-only", false, "hide inactive parties")
}

func runPeriods(cmd *cobra.Command, args []string) error {
	switch periodsBy {
	case "period", "party", "year", "contracts":
	default:
		return fmt.Errorf("unknown grouping %q", periodsBy)
	}
	if periodsSort != "amount" && periodsSort != "count" {
		return fmt.Errorf("unknown sort order %q", periodsSort)
	}

	report, err := analyze(context.Background())
	if err != nil {
		return err
	}
	printPeriods(newRenderer(cmd.OutOrStdout(), mask), report, periodsBy, periodsSort, periodsActiveOnly)
	return nil
}

func printPeriods(r *renderer, report *service.Report, by, order string, activeOnly bool) {
	s := report.Summary
	suffix := report.Config.InactiveSuffix
	hide := func(party string) bool { return activeOnly && aggregate.IsInactive(party, suffix) }

	tw := r.table()
	switch by {
	case "party":
		parties := s.Parties
		if order == "count" {
			parties = aggregate.ByDonationCount(parties)
			r.heading("Donations by party (by number of donations)")
		} else {
			r.heading("Donations by party")
		}
		fmt.Fprintln(tw, "PARTY\tTOTAL\tDONATIONS\tDONORS\tSTATUS")
		for _, p := range parties {
			if hide(p.Party) {
				continue
			}
			status := "active"
			if p.Inactive {
				status = "inactive"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", p.Party, formatAmount(p.TotalAmount), p.DonationCount, p.DonorCount, status)
		}
	case "year":
		r.heading("Donations by year")
		fmt.Fprintln(tw, "YEAR\tPARTY\tTOTAL\tDONATIONS")
		for _, y := range s.Years {
			if hide(y.Party) {
				continue
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", y.Year, y.Party, formatAmount(y.TotalAmount), y.DonationCount)
		}
	case "contracts":
		r.heading("Contract awards by period")
		fmt.Fprintln(tw, "PERIOD\tAGENCY\tTOTAL\tCONTRACTS\tCONTRACTORS")
		for _, c := range s.ContractPeriods {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", c.Period, c.Agency, formatAmount(c.TotalAmount), c.ContractCount, c.ContractorCount)
		}
	default:
		r.heading("Donations by period")
		fmt.Fprintln(tw, "PERIOD\tPARTY\tTOTAL\tDONATIONS\tDONORS")
		for _, p := range s.Periods {
			if hide(p.Party) {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.Period, p.Party, formatAmount(p.TotalAmount), p.DonationCount, p.DonorCount)
		}
	}
	_ = tw.Flush()
}
