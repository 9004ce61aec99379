// Package ranking orders flagged proximity pairs for presentation and derives
// per-entity suspicion levels from them.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/raphaelgruber/rastreador/internal/index"
	"github.com/raphaelgruber/rastreador/internal/models"
)

// Options narrows the ranked output.
type Options struct {
	// TopN keeps the first N pairs after ordering. 0 keeps all.
	TopN int
	// Party keeps pairs whose donation went to this party (case-insensitive).
	Party string
}

// Compare is the total order on pairs: severity descending, then the
// smaller absolute delta, then the larger amount, then Sequence.
func Compare(a, b models.ProximityPair) int {
	return cmp.Or(
		cmp.Compare(b.Severity, a.Severity),
		cmp.Compare(a.AbsDelta(), b.AbsDelta()),
		b.Amount.Cmp(a.Amount),
		cmp.Compare(a.Sequence, b.Sequence),
	)
}

// Less reports whether a ranks before b.
func Less(a, b models.ProximityPair) bool { return Compare(a, b) < 0 }

// Rank returns the flagged pairs in rank order. Unflagged pairs stay in the
// audit trail and are never ranked. The input slice is not modified.
func Rank(pairs []models.ProximityPair, opts Options) []models.ProximityPair {
	out := make([]models.ProximityPair, 0, len(pairs))
	for _, p := range ByParty(pairs, opts.Party) {
		if p.Flagged {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, Compare)
	if opts.TopN > 0 && len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out
}

// ByParty keeps pairs whose donation went to party, compared case-insensitively
// and ignoring surrounding spaces. An empty party keeps everything. Order is
// preserved.
func ByParty(pairs []models.ProximityPair, party string) []models.ProximityPair {
	party = strings.TrimSpace(party)
	if party == "" {
		return pairs
	}
	var out []models.ProximityPair
	for _, p := range pairs {
		if strings.EqualFold(strings.TrimSpace(p.Donation.Party), party) {
			out = append(out, p)
		}
	}
	return out
}

// AlertStats summarizes the flagged pairs of a run.
type AlertStats struct {
	Flagged       int     `json:"flagged"`
	DonationFirst int     `json:"donation_first"`
	MinAbsDelta   int     `json:"min_abs_delta_days"`
	MeanAbsDelta  float64 `json:"mean_abs_delta_days"`
}

// Summarize computes AlertStats over the flagged pairs, ignoring the rest.
func Summarize(pairs []models.ProximityPair) AlertStats {
	var st AlertStats
	total := 0
	for _, p := range pairs {
		if !p.Flagged {
			continue
		}
		d := p.AbsDelta()
		if st.Flagged == 0 || d < st.MinAbsDelta {
			st.MinAbsDelta = d
		}
		st.Flagged++
		total += d
		if p.Direction == models.DonationFirst {
			st.DonationFirst++
		}
	}
	if st.Flagged > 0 {
		st.MeanAbsDelta = float64(total) / float64(st.Flagged)
	}
	return st
}

// Suspicion thresholds in percent of an entity's contracts.
const (
	CriticalPercent = 80.0
	HighPercent     = 60.0
)

// Level buckets a suspicion percentage.
func Level(percent float64) models.RiskLevel {
	switch {
	case percent >= CriticalPercent:
		return models.RiskCritical
	case percent >= HighPercent:
		return models.RiskHigh
	default:
		return models.RiskMedium
	}
}

// EntityRisks computes, for each entity with flagged pairs, the share of its
// contracts that appear in at least one flagged pair. Ordered by percentage
// descending, then entity id.
func EntityRisks(pairs []models.ProximityPair, idx *index.Index) []models.EntityRisk {
	type acc struct {
		contracts map[int]struct{}
		parties   map[string]int
		closest   int
	}
	accs := make(map[string]*acc)
	for _, p := range pairs {
		if !p.Flagged {
			continue
		}
		a, ok := accs[p.EntityID]
		if !ok {
			a = &acc{contracts: make(map[int]struct{}), parties: make(map[string]int), closest: p.AbsDelta()}
			accs[p.EntityID] = a
		}
		a.contracts[p.Contract.Row] = struct{}{}
		if p.Donation.Party != "" {
			a.parties[p.Donation.Party]++
		}
		a.closest = min(a.closest, p.AbsDelta())
	}

	out := make([]models.EntityRisk, 0, len(accs))
	for id, a := range accs {
		e, ok := idx.Get(id)
		if !ok || len(e.Contracts) == 0 {
			continue
		}
		pct := float64(len(a.contracts)) / float64(len(e.Contracts)) * 100
		out = append(out, models.EntityRisk{
			EntityID:         id,
			Name:             e.Name,
			Party:            topParty(a.parties),
			FlaggedContracts: len(a.contracts),
			TotalContracts:   len(e.Contracts),
			Percent:          pct,
			Level:            Level(pct),
			ClosestDeltaDays: a.closest,
		})
	}
	slices.SortFunc(out, func(a, b models.EntityRisk) int {
		return cmp.Or(cmp.Compare(b.Percent, a.Percent), cmp.Compare(a.EntityID, b.EntityID))
	})
	return out
}

// topParty picks the most frequent party, alphabetically first on ties.
func topParty(counts map[string]int) string {
	var best string
	for p, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && p < best) {
			best = p
		}
	}
	return best
}
