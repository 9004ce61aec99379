// Package scoring pairs each entity's donations with its contract awards and
// scores how close in time they are.
package scoring

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/raphaelgruber/rastreador/internal/index"
	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Result holds every recorded pair and the truncations that shaped them.
// Pairs are in Sequence order.
type Result struct {
	Pairs       []models.ProximityPair
	Truncations []models.Truncation
}

// Flagged returns the pairs that passed the policy, in Sequence order.
func (r Result) Flagged() []models.ProximityPair {
	var out []models.ProximityPair
	for _, p := range r.Pairs {
		if p.Flagged {
			out = append(out, p)
		}
	}
	return out
}

// Audit returns recorded pairs that were not flagged.
func (r Result) Audit() []models.ProximityPair {
	var out []models.ProximityPair
	for _, p := range r.Pairs {
		if !p.Flagged {
			out = append(out, p)
		}
	}
	return out
}

// Warning returns a *CapacityExceededError when any entity was truncated.
func (r Result) Warning() error {
	if len(r.Truncations) == 0 {
		return nil
	}
	return &CapacityExceededError{Truncations: slices.Clone(r.Truncations)}
}

// Scorer applies a Policy to an entity index.
type Scorer struct {
	policy  Policy
	workers int
	logger  *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers scores entities on n goroutines. n <= 1 scores sequentially.
func WithWorkers(n int) Option {
	return func(s *Scorer) { s.workers = n }
}

// WithLogger sets the logger for truncation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

// New validates the policy and returns a Scorer.
func New(policy Policy, opts ...Option) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{policy: policy, workers: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Policy returns the scorer's policy.
func (s *Scorer) Policy() Policy { return s.policy }

// candidate is an entity's event lists after truncation.
type candidate struct {
	entity    *models.Entity
	donations []models.DonationRecord
	contracts []models.ContractRecord
}

// Score pairs every correlatable entity. Output order depends only on the
// index, never on how entities were scheduled across workers.
func (s *Scorer) Score(ctx context.Context, idx *index.Index) (Result, error) {
	start := time.Now()

	var (
		cands       []candidate
		truncations []models.Truncation
		maxBasis    = decimal.Zero
	)
	for e := range idx.Correlatable() {
		c, trunc := s.prepare(e)
		if trunc != nil {
			s.logger.Warn("entity fan-out truncated",
				"entity", e.ID,
				"donations", trunc.DonationsTotal, "donations_kept", trunc.DonationsKept,
				"contracts", trunc.ContractsTotal, "contracts_kept", trunc.ContractsKept)
			truncations = append(truncations, *trunc)
		}
		if m := s.maxBasis(c); m.GreaterThan(maxBasis) {
			maxBasis = m
		}
		cands = append(cands, c)
	}

	perEntity := make([][]models.ProximityPair, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.workers))
	for i, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perEntity[i] = s.pairs(c, maxBasis)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var pairs []models.ProximityPair
	for _, ps := range perEntity {
		for _, p := range ps {
			p.Sequence = len(pairs)
			pairs = append(pairs, p)
		}
	}

	s.logger.Debug("scored entities",
		"entities", len(cands), "pairs", len(pairs), "truncated", len(truncations),
		"duration_ms", time.Since(start).Milliseconds())
	return Result{Pairs: pairs, Truncations: truncations}, nil
}

// prepare applies the per-entity cap. Over the cap, only the K most recent
// events per side are kept, in their original order.
func (s *Scorer) prepare(e *models.Entity) (candidate, *models.Truncation) {
	c := candidate{entity: e, donations: e.Donations, contracts: e.Contracts}
	if e.EventCount() <= s.policy.EntityCap {
		return c, nil
	}
	k := s.policy.PerSideLimit
	c.donations = mostRecent(e.Donations, k, func(d models.DonationRecord) time.Time { return d.Date })
	c.contracts = mostRecent(e.Contracts, k, func(r models.ContractRecord) time.Time { return r.AwardDate })
	if len(c.donations) == len(e.Donations) && len(c.contracts) == len(e.Contracts) {
		return c, nil
	}
	return c, &models.Truncation{
		EntityID:       e.ID,
		DonationsTotal: len(e.Donations),
		DonationsKept:  len(c.donations),
		ContractsTotal: len(e.Contracts),
		ContractsKept:  len(c.contracts),
	}
}

// mostRecent keeps the k latest records. Equal dates keep the earlier record.
func mostRecent[T any](records []T, k int, date func(T) time.Time) []T {
	if len(records) <= k {
		return records
	}
	pos := make([]int, len(records))
	for i := range pos {
		pos[i] = i
	}
	slices.SortStableFunc(pos, func(a, b int) int {
		return date(records[b]).Compare(date(records[a]))
	})
	pos = pos[:k]
	slices.Sort(pos)

	out := make([]T, 0, k)
	for _, i := range pos {
		out = append(out, records[i])
	}
	return out
}

func (s *Scorer) maxBasis(c candidate) decimal.Decimal {
	maxD, maxC := decimal.Zero, decimal.Zero
	for _, d := range c.donations {
		maxD = decimal.Max(maxD, d.Amount)
	}
	for _, r := range c.contracts {
		maxC = decimal.Max(maxC, r.Amount)
	}
	return s.policy.basis(maxD, maxC)
}

// pairs enumerates donations x contracts in insertion order.
func (s *Scorer) pairs(c candidate, maxBasis decimal.Decimal) []models.ProximityPair {
	var out []models.ProximityPair
	for _, d := range c.donations {
		for _, r := range c.contracts {
			delta := models.DaysBetween(d.Date, r.AwardDate)
			dir := models.DonationFirst
			if delta < 0 {
				dir = models.AwardFirst
			}
			flagged, keep := s.classify(delta, dir)
			if !keep {
				continue
			}
			amount := s.policy.basis(d.Amount, r.Amount)
			out = append(out, models.ProximityPair{
				EntityID:   c.entity.ID,
				EntityName: cmp.Or(c.entity.Name, d.DonorName, r.ContractorName),
				Donation:   d,
				Contract:   r,
				DeltaDays:  delta,
				Direction:  dir,
				Flagged:    flagged,
				Amount:     amount,
				Severity:   s.policy.Severity(delta, amount, maxBasis, dir == models.AwardFirst),
			})
		}
	}
	return out
}

// classify decides whether a pair is flagged and whether it is kept at all.
func (s *Scorer) classify(delta int, dir models.Direction) (flagged, keep bool) {
	abs := max(delta, -delta)
	if s.policy.Direction == Both || dir == models.DonationFirst {
		within := abs <= s.policy.WindowDays
		return within, within
	}
	return false, abs <= s.policy.auditWindow()
}
