package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/surrealdb/surrealdb.go"
)

// RunRecord is the stored header of a published run.
type RunRecord struct {
	RunID             string    `json:"run_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	PublishedAt       time.Time `json:"published_at"`
	Partial           bool      `json:"partial"`
	Sources           []string  `json:"sources"`
	Warnings          []string  `json:"warnings"`
	WindowDays        int       `json:"window_days"`
	Direction         string    `json:"direction"`
	DonationRows      int       `json:"donation_rows"`
	DonationsAccepted int       `json:"donations_accepted"`
	ContractRows      int       `json:"contract_rows"`
	ContractsAccepted int       `json:"contracts_accepted"`
	AlertCount        int       `json:"alert_count"`
}

// StoredAlert is one ranked alert of a published run.
type StoredAlert struct {
	Rank           int       `json:"rank"`
	EntityID       string    `json:"entity_id"`
	EntityName     string    `json:"entity_name"`
	Party          string    `json:"party"`
	Agency         string    `json:"agency"`
	ContractNumber string    `json:"contract_number"`
	DonationDate   time.Time `json:"donation_date"`
	AwardDate      time.Time `json:"award_date"`
	DeltaDays      int       `json:"delta_days"`
	Direction      string    `json:"direction"`
	Severity       float64   `json:"severity"`
}

// SaveOptions controls what identifying data is stored.
type SaveOptions struct {
	Mask bool
}

// saveReportSQL replaces a run and all its child records in one transaction,
// so republishing the same run id is idempotent.
const saveReportSQL = `
	BEGIN TRANSACTION;
	LET $run = type::record("run", $id);
	DELETE alert WHERE run = $run;
	DELETE period_summary WHERE run = $run;
	DELETE entity_risk WHERE run = $run;
	UPSERT $run CONTENT {
		generated_at: type::datetime($generated_at),
		partial: $partial,
		sources: $sources,
		warnings: $warnings,
		window_days: $window_days,
		direction: $direction,
		donation_rows: $donation_rows,
		donations_accepted: $donations_accepted,
		contract_rows: $contract_rows,
		contracts_accepted: $contracts_accepted,
		alert_count: array::len($alerts)
	};
	FOR $a IN $alerts {
		CREATE alert CONTENT {
			run: $run,
			rank: $a.rank,
			entity_id: $a.entity_id,
			entity_name: $a.entity_name,
			party: $a.party,
			agency: $a.agency,
			contract_number: $a.contract_number,
			donation_date: type::datetime($a.donation_date),
			award_date: type::datetime($a.award_date),
			donation_amount: type::decimal($a.donation_amount),
			contract_amount: type::decimal($a.contract_amount),
			delta_days: $a.delta_days,
			direction: $a.direction,
			severity: $a.severity
		};
	};
	FOR $p IN $periods {
		CREATE period_summary CONTENT {
			run: $run,
			period: $p.period,
			party: $p.party,
			total_amount: type::decimal($p.total_amount),
			donation_count: $p.donation_count,
			donor_count: $p.donor_count
		};
	};
	FOR $r IN $risks {
		CREATE entity_risk CONTENT {
			run: $run,
			entity_id: $r.entity_id,
			name: $r.name,
			party: $r.party,
			flagged_contracts: $r.flagged_contracts,
			total_contracts: $r.total_contracts,
			percent: $r.percent,
			level: $r.level
		};
	};
	COMMIT TRANSACTION;
`

// SaveReport publishes a report. Only ranked alerts are stored; the audit
// trail and rejections stay in file exports.
func (c *Client) SaveReport(ctx context.Context, report *service.Report, opts SaveOptions) error {
	if opts.Mask {
		report = report.Masked()
	}

	alerts := make([]map[string]any, 0, len(report.Alerts))
	for i, p := range report.Alerts {
		alerts = append(alerts, map[string]any{
			"rank":            i + 1,
			"entity_id":       p.EntityID,
			"entity_name":     p.EntityName,
			"party":           p.Donation.Party,
			"agency":          p.Contract.Agency,
			"contract_number": p.Contract.ContractNumber,
			"donation_date":   p.Donation.Date.Format(time.RFC3339),
			"award_date":      p.Contract.AwardDate.Format(time.RFC3339),
			"donation_amount": p.Donation.Amount.String(),
			"contract_amount": p.Contract.Amount.String(),
			"delta_days":      p.DeltaDays,
			"direction":       string(p.Direction),
			"severity":        p.Severity,
		})
	}

	periods := make([]map[string]any, 0, len(report.Summary.Periods))
	for _, p := range report.Summary.Periods {
		periods = append(periods, map[string]any{
			"period":         p.Period,
			"party":          p.Party,
			"total_amount":   p.TotalAmount.String(),
			"donation_count": p.DonationCount,
			"donor_count":    p.DonorCount,
		})
	}

	risks := make([]map[string]any, 0, len(report.Risks))
	for _, r := range report.Risks {
		risks = append(risks, map[string]any{
			"entity_id":         r.EntityID,
			"name":              r.Name,
			"party":             r.Party,
			"flagged_contracts": r.FlaggedContracts,
			"total_contracts":   r.TotalContracts,
			"percent":           r.Percent,
			"level":             string(r.Level),
		})
	}

	_, err := surrealdb.Query[any](ctx, c.db, saveReportSQL, map[string]any{
		"id":                 report.RunID,
		"generated_at":       report.GeneratedAt.Format(time.RFC3339Nano),
		"partial":            report.Partial,
		"sources":            nonNil(report.Sources),
		"warnings":           nonNil(report.Warnings),
		"window_days":        report.Config.WindowDays,
		"direction":          report.Config.Direction,
		"donation_rows":      report.Counts.DonationRows,
		"donations_accepted": report.Counts.DonationsAccepted,
		"contract_rows":      report.Counts.ContractRows,
		"contracts_accepted": report.Counts.ContractsAccepted,
		"alerts":             alerts,
		"periods":            periods,
		"risks":              risks,
	})
	if err != nil {
		return fmt.Errorf("save report: %w", wrapQueryError(err))
	}
	c.logger.Info("published run", "run_id", report.RunID, "alerts", len(alerts))
	return nil
}

const runFields = `meta::id(id) AS run_id, generated_at, published_at, partial, sources, warnings,
	window_days, direction, donation_rows, donations_accepted, contract_rows,
	contracts_accepted, alert_count`

// ListRuns returns published runs, most recent first.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]RunRecord](ctx, c.db,
		`SELECT `+runFields+` FROM run ORDER BY generated_at DESC LIMIT $limit`,
		map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return []RunRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// GetRun returns one run header, or ErrRunNotFound.
func (c *Client) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	results, err := surrealdb.Query[[]RunRecord](ctx, c.db,
		`SELECT `+runFields+` FROM type::record("run", $id)`,
		map[string]any{"id": runID})
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return &(*results)[0].Result[0], nil
}

// RunAlerts returns the stored alerts of a run in rank order.
func (c *Client) RunAlerts(ctx context.Context, runID string, limit int) ([]StoredAlert, error) {
	sql := `SELECT rank, entity_id, entity_name, party, agency, contract_number,
		donation_date, award_date, delta_days, direction, severity
		FROM alert WHERE run = type::record("run", $id) ORDER BY rank`
	vars := map[string]any{"id": runID}
	if limit > 0 {
		sql += ` LIMIT $limit`
		vars["limit"] = limit
	}
	results, err := surrealdb.Query[[]StoredAlert](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("run alerts: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return []StoredAlert{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteRun removes a run and its child records. Returns ErrRunNotFound if
// the run was never published.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	if _, err := c.GetRun(ctx, runID); err != nil {
		return err
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN TRANSACTION;
		LET $run = type::record("run", $id);
		DELETE alert WHERE run = $run;
		DELETE period_summary WHERE run = $run;
		DELETE entity_risk WHERE run = $run;
		DELETE $run;
		COMMIT TRANSACTION;
	`, map[string]any{"id": runID})
	if err != nil {
		return fmt.Errorf("delete run: %w", wrapQueryError(err))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
