// Package aggregate rolls normalized records up by period, party, year,
// agency and entity. Every reduction is a commutative sum or set union per
// group, and every output is sorted by its group key, so results do not
// depend on input order.
package aggregate

import (
	"cmp"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
)

// Options configures grouping.
type Options struct {
	Periods        Periods
	InactiveSuffix string
}

// Summary holds every rollup of one run.
type Summary struct {
	Periods         []models.PeriodSummary         `json:"periods"`
	Parties         []models.PartySummary          `json:"parties"`
	Years           []models.YearSummary           `json:"years"`
	ContractPeriods []models.ContractPeriodSummary `json:"contract_periods"`
	Entities        []models.EntitySummary         `json:"entities"`
	Stats           models.DatasetStats            `json:"stats"`
}

type bucket struct {
	total decimal.Decimal
	count int
	ids   map[string]struct{}
}

func (b *bucket) add(id string, amount decimal.Decimal) {
	if b.ids == nil {
		b.ids = make(map[string]struct{})
		b.total = decimal.Zero
	}
	b.total = b.total.Add(amount)
	b.count++
	b.ids[id] = struct{}{}
}

type groups[K comparable] map[K]*bucket

func (g groups[K]) at(k K) *bucket {
	b, ok := g[k]
	if !ok {
		b = &bucket{}
		g[k] = b
	}
	return b
}

type periodParty struct{ period, party string }
type yearParty struct {
	year  int
	party string
}
type periodAgency struct{ period, agency string }

type entityAcc struct {
	name      string
	donations bucket
	contracts bucket
	parties   map[string]struct{}
}

// Aggregate reduces both datasets in one pass each.
func Aggregate(donations iter.Seq[models.DonationRecord], contracts iter.Seq[models.ContractRecord], opts Options) Summary {
	byPeriod := groups[periodParty]{}
	byParty := groups[string]{}
	byYear := groups[yearParty]{}
	byContractPeriod := groups[periodAgency]{}
	entities := make(map[string]*entityAcc)
	entity := func(id, name string) *entityAcc {
		e, ok := entities[id]
		if !ok {
			e = &entityAcc{parties: make(map[string]struct{})}
			entities[id] = e
		}
		e.name = models.PreferName(e.name, name)
		return e
	}

	var stats models.DatasetStats
	stats.TotalDonated = decimal.Zero
	stats.MaxDonation = decimal.Zero
	donors := groups[string]{}

	for d := range donations {
		period := opts.Periods.Assign(d.Date)
		byPeriod.at(periodParty{period, d.Party}).add(d.DonorID, d.Amount)
		byParty.at(d.Party).add(d.DonorID, d.Amount)
		byYear.at(yearParty{d.Date.Year(), d.Party}).add(d.DonorID, d.Amount)
		donors.at(d.DonorID).add(d.DonorID, d.Amount)

		e := entity(d.DonorID, d.DonorName)
		e.donations.add(d.DonorID, d.Amount)
		if d.Party != "" {
			e.parties[d.Party] = struct{}{}
		}

		stats.Donations++
		stats.TotalDonated = stats.TotalDonated.Add(d.Amount)
		stats.MaxDonation = decimal.Max(stats.MaxDonation, d.Amount)
		stats.FirstDate = earliest(stats.FirstDate, d.Date)
		stats.LastDate = latest(stats.LastDate, d.Date)
	}

	contractors := make(map[string]struct{})
	for c := range contracts {
		period := opts.Periods.Assign(c.AwardDate)
		byContractPeriod.at(periodAgency{period, c.Agency}).add(c.ContractorID, c.Amount)
		entity(c.ContractorID, c.ContractorName).contracts.add(c.ContractorID, c.Amount)
		contractors[c.ContractorID] = struct{}{}
		stats.Contracts++
	}

	stats.Donors = len(donors)
	for _, b := range donors {
		if b.count > 1 {
			stats.RepeatDonors++
		}
	}
	stats.Contractors = len(contractors)
	stats.MeanDonation = decimal.Zero
	if stats.Donations > 0 {
		stats.MeanDonation = stats.TotalDonated.Div(decimal.NewFromInt(int64(stats.Donations))).Round(2)
	}

	rank := periodRank(opts.Periods)
	return Summary{
		Periods:         periodSummaries(byPeriod, rank),
		Parties:         partySummaries(byParty, opts.InactiveSuffix),
		Years:           yearSummaries(byYear),
		ContractPeriods: contractPeriodSummaries(byContractPeriod, rank),
		Entities:        entitySummaries(entities),
		Stats:           stats,
	}
}

// periodRank orders periods as configured, with unassigned last.
func periodRank(ps Periods) func(string) int {
	pos := make(map[string]int, len(ps))
	for i, p := range ps {
		pos[p.Name] = i
	}
	return func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return len(ps)
	}
}

func periodSummaries(g groups[periodParty], rank func(string) int) []models.PeriodSummary {
	out := make([]models.PeriodSummary, 0, len(g))
	for k, b := range g {
		out = append(out, models.PeriodSummary{
			Period:        k.period,
			Party:         k.party,
			TotalAmount:   b.total,
			DonationCount: b.count,
			DonorCount:    len(b.ids),
		})
	}
	slices.SortFunc(out, func(a, b models.PeriodSummary) int {
		return cmp.Or(
			cmp.Compare(rank(a.Period), rank(b.Period)),
			b.TotalAmount.Cmp(a.TotalAmount),
			cmp.Compare(a.Party, b.Party),
		)
	})
	return out
}

func partySummaries(g groups[string], inactiveSuffix string) []models.PartySummary {
	out := make([]models.PartySummary, 0, len(g))
	for party, b := range g {
		out = append(out, models.PartySummary{
			Party:         party,
			TotalAmount:   b.total,
			DonationCount: b.count,
			DonorCount:    len(b.ids),
			Inactive:      IsInactive(party, inactiveSuffix),
		})
	}
	slices.SortFunc(out, func(a, b models.PartySummary) int {
		return cmp.Or(b.TotalAmount.Cmp(a.TotalAmount), cmp.Compare(a.Party, b.Party))
	})
	return out
}

// ByDonationCount returns a copy of parties ordered by number of donations
// descending, then total descending, then name.
func ByDonationCount(parties []models.PartySummary) []models.PartySummary {
	out := slices.Clone(parties)
	slices.SortFunc(out, func(a, b models.PartySummary) int {
		return cmp.Or(
			cmp.Compare(b.DonationCount, a.DonationCount),
			b.TotalAmount.Cmp(a.TotalAmount),
			cmp.Compare(a.Party, b.Party),
		)
	})
	return out
}

// IsInactive reports whether a party name carries the inactive suffix.
func IsInactive(party, suffix string) bool {
	return suffix != "" && strings.HasSuffix(strings.TrimSpace(party), suffix)
}

func yearSummaries(g groups[yearParty]) []models.YearSummary {
	out := make([]models.YearSummary, 0, len(g))
	for k, b := range g {
		out = append(out, models.YearSummary{
			Year:          k.year,
			Party:         k.party,
			TotalAmount:   b.total,
			DonationCount: b.count,
		})
	}
	slices.SortFunc(out, func(a, b models.YearSummary) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Party, b.Party))
	})
	return out
}

func contractPeriodSummaries(g groups[periodAgency], rank func(string) int) []models.ContractPeriodSummary {
	out := make([]models.ContractPeriodSummary, 0, len(g))
	for k, b := range g {
		out = append(out, models.ContractPeriodSummary{
			Period:          k.period,
			Agency:          k.agency,
			TotalAmount:     b.total,
			ContractCount:   b.count,
			ContractorCount: len(b.ids),
		})
	}
	slices.SortFunc(out, func(a, b models.ContractPeriodSummary) int {
		return cmp.Or(
			cmp.Compare(rank(a.Period), rank(b.Period)),
			b.TotalAmount.Cmp(a.TotalAmount),
			cmp.Compare(a.Agency, b.Agency),
		)
	})
	return out
}

func entitySummaries(entities map[string]*entityAcc) []models.EntitySummary {
	out := make([]models.EntitySummary, 0, len(entities))
	for id, e := range entities {
		s := models.EntitySummary{
			EntityID:        id,
			Name:            e.name,
			DonationCount:   e.donations.count,
			TotalDonated:    orZero(e.donations.total),
			ContractCount:   e.contracts.count,
			TotalContracted: orZero(e.contracts.total),
		}
		for p := range e.parties {
			s.Parties = append(s.Parties, p)
		}
		slices.Sort(s.Parties)
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b models.EntitySummary) int {
		return cmp.Or(
			b.TotalDonated.Add(b.TotalContracted).Cmp(a.TotalDonated.Add(a.TotalContracted)),
			cmp.Compare(a.EntityID, b.EntityID),
		)
	})
	return out
}

// orZero turns an untouched bucket total into an explicit zero.
func orZero(d decimal.Decimal) decimal.Decimal {
	if d.Equal(decimal.Zero) {
		return decimal.Zero
	}
	return d
}

func earliest(cur *time.Time, t time.Time) *time.Time {
	if cur == nil || t.Before(*cur) {
		return &t
	}
	return cur
}

func latest(cur *time.Time, t time.Time) *time.Time {
	if cur == nil || t.After(*cur) {
		return &t
	}
	return cur
}
