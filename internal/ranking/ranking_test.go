package ranking

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/raphaelgruber/rastreador/internal/index"
	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(seq int, severity float64, delta int, amount int64) models.ProximityPair {
	return models.ProximityPair{
		EntityID:  "A1",
		DeltaDays: delta,
		Flagged:   true,
		Amount:    decimal.NewFromInt(amount),
		Severity:  severity,
		Sequence:  seq,
		Donation:  models.DonationRecord{Party: "PLN"},
	}
}

func sequences(ps []models.ProximityPair) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Sequence
	}
	return out
}

func TestRank_TieBreaks(t *testing.T) {
	pairs := []models.ProximityPair{
		pair(0, 0.5, 10, 100),
		pair(1, 0.9, 30, 100),
		pair(2, 0.5, -5, 100), // same severity, closer
		pair(3, 0.5, 10, 900), // same severity and delta, larger amount
		pair(4, 0.5, 10, 100), // full tie with 0, later insertion
	}

	got := Rank(pairs, Options{})
	assert.Equal(t, []int{1, 2, 3, 0, 4}, sequences(got))
}

func TestRank_ExcludesUnflagged(t *testing.T) {
	audit := pair(0, 0.99, -223, 100)
	audit.Flagged = false
	got := Rank([]models.ProximityPair{audit, pair(1, 0.1, 22, 1)}, Options{})

	assert.Equal(t, []int{1}, sequences(got))
}

func TestRank_TopNKeepsPrefix(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	var pairs []models.ProximityPair
	for i := range 50 {
		pairs = append(pairs, pair(i, float64(rng.IntN(5))/4, rng.IntN(181)-90, rng.Int64N(3)))
	}

	all := Rank(pairs, Options{})
	top := Rank(pairs, Options{TopN: 7})

	assert.Equal(t, all[:7], top)
	assert.True(t, slices.IsSortedFunc(all, Compare))
}

func TestRank_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 2))
	var pairs []models.ProximityPair
	for i := range 100 {
		pairs = append(pairs, pair(i, float64(rng.IntN(3)), rng.IntN(10), rng.Int64N(2)))
	}
	want := sequences(Rank(pairs, Options{}))

	for range 10 {
		shuffled := slices.Clone(pairs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, sequences(Rank(shuffled, Options{})))
	}
}

func TestRank_PartyFilter(t *testing.T) {
	other := pair(1, 0.8, 3, 10)
	other.Donation.Party = "PAC"

	got := Rank([]models.ProximityPair{pair(0, 0.5, 3, 10), other}, Options{Party: " pac"})
	assert.Equal(t, []int{1}, sequences(got))
}

func TestByParty_AppliesToUnflaggedPairs(t *testing.T) {
	pln := pair(0, 0.2, -200, 10)
	pln.Flagged = false
	pac := pair(1, 0.1, -300, 10)
	pac.Flagged = false
	pac.Donation.Party = "PAC"
	audit := []models.ProximityPair{pln, pac}

	assert.Equal(t, []int{1}, sequences(ByParty(audit, "Pac ")))
	assert.Equal(t, []int{0, 1}, sequences(ByParty(audit, "")))
	assert.Empty(t, ByParty(audit, "PUSC"))
}

func TestSummarize(t *testing.T) {
	first := func(seq, delta int) models.ProximityPair {
		p := pair(seq, 0.5, delta, 10)
		p.Direction = models.DonationFirst
		return p
	}
	reverse := pair(2, 0.4, -10, 10)
	reverse.Direction = models.AwardFirst
	unflagged := first(3, 1)
	unflagged.Flagged = false

	st := Summarize([]models.ProximityPair{first(0, 22), first(1, 60), reverse, unflagged})
	assert.Equal(t, AlertStats{
		Flagged:       3,
		DonationFirst: 2,
		MinAbsDelta:   10,
		MeanAbsDelta:  float64(22+60+10) / 3,
	}, st)

	assert.Equal(t, AlertStats{}, Summarize(nil))
}

func TestLevel(t *testing.T) {
	tests := []struct {
		percent float64
		want    models.RiskLevel
	}{
		{100, models.RiskCritical},
		{80, models.RiskCritical},
		{79.9, models.RiskHigh},
		{60, models.RiskHigh},
		{10, models.RiskMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.percent), "percent %v", tt.percent)
	}
}

func TestEntityRisks(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC) }
	ds := []models.DonationRecord{
		{DonorID: "A1", Party: "PLN", Date: day(1)},
		{DonorID: "B2", Party: "PAC", Date: day(1)},
	}
	cs := []models.ContractRecord{
		{Row: 0, ContractorID: "A1", ContractorName: "Constructora A", AwardDate: day(5)},
		{Row: 1, ContractorID: "A1", AwardDate: day(9)},
		{Row: 2, ContractorID: "B2", AwardDate: day(3)},
		{Row: 3, ContractorID: "B2", AwardDate: day(30)},
		{Row: 4, ContractorID: "B2", AwardDate: day(31)},
	}
	idx := index.Build(slices.Values(ds), slices.Values(cs))

	mk := func(d models.DonationRecord, c models.ContractRecord, flagged bool) models.ProximityPair {
		return models.ProximityPair{
			EntityID:  d.DonorID,
			Donation:  d,
			Contract:  c,
			DeltaDays: models.DaysBetween(d.Date, c.AwardDate),
			Flagged:   flagged,
		}
	}
	pairs := []models.ProximityPair{
		mk(ds[0], cs[0], true),
		mk(ds[0], cs[1], true),
		mk(ds[0], cs[1], true), // same contract twice counts once
		mk(ds[1], cs[2], true),
		mk(ds[1], cs[3], false),
	}

	risks := EntityRisks(pairs, idx)

	require.Len(t, risks, 2)
	assert.Equal(t, models.EntityRisk{
		EntityID:         "A1",
		Name:             "Constructora A",
		Party:            "PLN",
		FlaggedContracts: 2,
		TotalContracts:   2,
		Percent:          100,
		Level:            models.RiskCritical,
		ClosestDeltaDays: 4,
	}, risks[0])
	assert.Equal(t, "B2", risks[1].EntityID)
	assert.Equal(t, 1, risks[1].FlaggedContracts)
	assert.Equal(t, 3, risks[1].TotalContracts)
	assert.Equal(t, models.RiskMedium, risks[1].Level)
}
