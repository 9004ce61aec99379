package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/spf13/cobra"
)

var (
	entitiesTotals bool
	entitiesLimit  int
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Rank entities by share of contracts with flagged donations",
	Long: `For every entity with at least one flagged pair, show how many of its
contracts were awarded close to one of its donations.

Levels: CRITICAL (80% or more), HIGH (60% or more), MEDIUM otherwise.

With --totals, show donor and contractor totals for every entity instead.

Examples:
  rastreador entities -d donaciones.csv -c contratos/
  rastreador entities -d donaciones.csv -c contratos/ --totals -n 100`,
	Args: cobra.NoArgs,
	RunE: runEntities,
}

func init() {
	entitiesCmd.Flags().BoolVar(&entitiesTotals, "totals", false, "show donor/contractor totals instead")
	entitiesCmd.Flags().IntVarP(&entitiesLimit, "limit", "n", 50, "max rows (0 = all)")
}

func runEntities(cmd *cobra.Command, args []string) error {
	report, err := analyze(context.Background())
	if err != nil {
		return err
	}
	r := newRenderer(cmd.OutOrStdout(), mask)

	if entitiesTotals {
		totals := report.Summary.Entities
		r.heading("Entities (%d)", len(totals))
		tw := r.table()
		fmt.Fprintln(tw, "ENTITY\tNAME\tDONATIONS\tDONATED\tCONTRACTS\tCONTRACTED")
		for _, e := range limit(totals, entitiesLimit) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
				r.id(e.EntityID), truncate(e.Name, 30),
				e.DonationCount, formatAmount(e.TotalDonated),
				e.ContractCount, formatAmount(e.TotalContracted))
		}
		return tw.Flush()
	}

	if len(report.Risks) == 0 {
		fmt.Fprintln(r.w, "No entities with flagged pairs.")
		return nil
	}
	r.heading("Entities by share of flagged contracts (%d)", len(report.Risks))
	printRisks(r, limit(report.Risks, entitiesLimit))
	return nil
}

func printRisks(r *renderer, risks []models.EntityRisk) {
	tw := r.table()
	fmt.Fprintln(tw, "ENTITY\tNAME\tPARTY\tFLAGGED\tSHARE\tCLOSEST\tLEVEL")
	for _, e := range risks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%.1f%%\t%d d\t%s\n",
			r.id(e.EntityID), truncate(e.Name, 30), e.Party,
			e.FlaggedContracts, e.TotalContracts, e.Percent, e.ClosestDeltaDays, r.level(e.Level))
	}
	_ = tw.Flush()
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
