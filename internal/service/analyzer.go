// Package service runs the correlation pipeline end to end.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/rastreador/internal/aggregate"
	"github.com/raphaelgruber/rastreador/internal/config"
	"github.com/raphaelgruber/rastreador/internal/index"
	"github.com/raphaelgruber/rastreador/internal/metrics"
	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/raphaelgruber/rastreador/internal/normalize"
	"github.com/raphaelgruber/rastreador/internal/ranking"
	"github.com/raphaelgruber/rastreador/internal/scoring"
)

// Input is one pair of raw datasets.
type Input struct {
	Donations []normalize.RawRow
	Contracts []normalize.RawRow
	Sources   []string
}

// Counts balance raw rows against accepted records and rejections.
type Counts struct {
	DonationRows      int `json:"donation_rows"`
	DonationsAccepted int `json:"donations_accepted"`
	ContractRows      int `json:"contract_rows"`
	ContractsAccepted int `json:"contracts_accepted"`
}

// Report is the complete output of one run. Partial is set whenever rows were
// rejected or an entity was truncated.
type Report struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Partial     bool                   `json:"partial"`
	Warnings    []string               `json:"warnings,omitempty"`
	Sources     []string               `json:"sources,omitempty"`
	Config      config.RunConfig       `json:"config"`
	Counts      Counts                 `json:"counts"`
	Rejections  []models.Rejection     `json:"rejections"`
	Index       index.Stats            `json:"index"`
	Alerts      []models.ProximityPair `json:"alerts"`
	Audit       []models.ProximityPair `json:"audit"`
	AlertStats  ranking.AlertStats     `json:"alert_stats"`
	Truncations []models.Truncation    `json:"truncations,omitempty"`
	Summary     aggregate.Summary      `json:"summary"`
	Risks       []models.EntityRisk    `json:"risks"`
	Timings     metrics.Snapshot       `json:"timings"`

	// Capacity is the scorer's *scoring.CapacityExceededError, if any.
	Capacity error `json:"-"`
}

// Masked returns a copy of r in which every entity, donor and contractor
// identifier is masked, including those quoted in warnings.
func (r *Report) Masked() *Report {
	m := *r
	m.Alerts = mapSlice(r.Alerts, models.ProximityPair.Masked)
	m.Audit = mapSlice(r.Audit, models.ProximityPair.Masked)
	m.Truncations = mapSlice(r.Truncations, func(t models.Truncation) models.Truncation {
		t.EntityID = models.MaskID(t.EntityID)
		return t
	})
	m.Risks = mapSlice(r.Risks, func(e models.EntityRisk) models.EntityRisk {
		e.EntityID = models.MaskID(e.EntityID)
		return e
	})
	m.Summary.Entities = mapSlice(r.Summary.Entities, func(e models.EntitySummary) models.EntitySummary {
		e.EntityID = models.MaskID(e.EntityID)
		return e
	})
	m.Warnings = mapSlice(r.Warnings, func(w string) string {
		for _, t := range r.Truncations {
			w = strings.ReplaceAll(w, t.EntityID, models.MaskID(t.EntityID))
		}
		return w
	})
	if r.Capacity != nil {
		m.Capacity = &scoring.CapacityExceededError{Truncations: m.Truncations}
	}
	return &m
}

func mapSlice[T any](in []T, f func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// Analyzer runs the pipeline for one validated run configuration.
type Analyzer struct {
	cfg     config.RunConfig
	agg     aggregate.Options
	logger  *slog.Logger
	metrics *metrics.Collector
	workers int
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *Analyzer) { a.logger = l } }

// WithMetrics records stage timings into c.
func WithMetrics(c *metrics.Collector) Option { return func(a *Analyzer) { a.metrics = c } }

// WithWorkers sets scorer parallelism.
func WithWorkers(n int) Option { return func(a *Analyzer) { a.workers = n } }

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option { return func(a *Analyzer) { a.now = now } }

// NewAnalyzer validates cfg. Any problem is a *config.ConfigurationError and
// no data is touched.
func NewAnalyzer(cfg config.RunConfig, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	agg, err := cfg.Aggregation()
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		cfg:     cfg,
		agg:     agg,
		logger:  slog.Default(),
		metrics: metrics.NewCollector(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Run normalizes, indexes, scores, aggregates and ranks one input.
func (a *Analyzer) Run(ctx context.Context, in Input) (*Report, error) {
	runID := uuid.NewString()
	log := a.logger.With("run_id", runID)

	n, err := normalize.NewNormalizer(a.cfg.DonationColumns(), a.cfg.ContractColumns(), a.cfg.DateParser())
	if err != nil {
		return nil, &config.ConfigurationError{Err: err}
	}
	scorer, err := scoring.New(a.cfg.Policy(), scoring.WithWorkers(a.workers), scoring.WithLogger(log))
	if err != nil {
		return nil, &config.ConfigurationError{Err: err}
	}

	report := &Report{
		RunID:       runID,
		GeneratedAt: a.now().UTC(),
		Sources:     in.Sources,
		Config:      a.cfg,
	}

	var donations []models.DonationRecord
	var contracts []models.ContractRecord
	a.metrics.Time(metrics.StageNormalize, func() int {
		ds, cs := n.Donations(in.Donations), n.Contracts(in.Contracts)
		donations = slices.Collect(ds.All())
		contracts = slices.Collect(cs.All())
		report.Rejections = append(ds.Rejections(), cs.Rejections()...)
		report.Counts = Counts{
			DonationRows:      ds.Len(),
			DonationsAccepted: len(donations),
			ContractRows:      cs.Len(),
			ContractsAccepted: len(contracts),
		}
		return ds.Len() + cs.Len()
	})
	if rejected := len(report.Rejections); rejected > 0 {
		log.Warn("rows rejected", "rejected", rejected,
			"donation_rows", report.Counts.DonationRows, "contract_rows", report.Counts.ContractRows)
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d of %d rows rejected",
			rejected, report.Counts.DonationRows+report.Counts.ContractRows))
	}

	var idx *index.Index
	a.metrics.Time(metrics.StageIndex, func() int {
		idx = index.Build(slices.Values(donations), slices.Values(contracts))
		return idx.Len()
	})
	report.Index = idx.Stats()
	log.Debug("index built", "entities", report.Index.Entities, "matched", report.Index.Matched)

	var result scoring.Result
	start := time.Now()
	result, err = scorer.Score(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("score entities: %w", err)
	}
	a.metrics.RecordTiming(metrics.StageScore, time.Since(start), len(result.Pairs))
	report.Truncations = result.Truncations
	if warn := result.Warning(); warn != nil {
		report.Capacity = warn
		report.Warnings = append(report.Warnings, warn.Error())
	}

	a.metrics.Time(metrics.StageAggregate, func() int {
		report.Summary = aggregate.Aggregate(slices.Values(donations), slices.Values(contracts), a.agg)
		return len(donations) + len(contracts)
	})

	a.metrics.Time(metrics.StageRank, func() int {
		report.Alerts = ranking.Rank(result.Pairs, ranking.Options{TopN: a.cfg.TopN})
		report.Audit = result.Audit()
		report.AlertStats = ranking.Summarize(result.Pairs)
		report.Risks = ranking.EntityRisks(result.Pairs, idx)
		return len(report.Alerts)
	})

	report.Partial = len(report.Rejections) > 0 || len(report.Truncations) > 0
	report.Timings = a.metrics.Snapshot()
	log.Info("analysis complete",
		"donations", len(donations), "contracts", len(contracts),
		"alerts", len(report.Alerts), "audit", len(report.Audit), "partial", report.Partial)
	return report, nil
}
