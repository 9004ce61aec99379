package aggregate

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func don(id, party, amount string, d time.Time) models.DonationRecord {
	return models.DonationRecord{
		DonorID:   id,
		DonorName: "Donante " + id,
		Party:     party,
		Amount:    decimal.RequireFromString(amount),
		Date:      d,
	}
}

func con(id, agency, amount string, d time.Time) models.ContractRecord {
	return models.ContractRecord{
		ContractorID: id,
		Agency:       agency,
		Amount:       decimal.RequireFromString(amount),
		AwardDate:    d,
	}
}

func fixture() ([]models.DonationRecord, []models.ContractRecord) {
	ds := []models.DonationRecord{
		don("A1", "PLN", "1000000", date(2020, 1, 10)),
		don("A1", "PLN", "250000.50", date(2021, 7, 1)),
		don("B2", "PAC", "500000", date(2015, 3, 3)),
		don("C3", "PLN", "75000", date(2003, 2, 2)),
		don("D4", "PUSC (INACTIVO)", "10000", date(2012, 8, 8)),
	}
	cs := []models.ContractRecord{
		con("A1", "MOPT", "5000000", date(2020, 2, 1)),
		con("E5", "MOPT", "1200000", date(2020, 6, 1)),
		con("E5", "CCSS", "300000", date(2016, 1, 1)),
	}
	return ds, cs
}

func TestAggregate_Groups(t *testing.T) {
	ds, cs := fixture()
	s := Aggregate(slices.Values(ds), slices.Values(cs), Options{
		Periods:        DefaultPeriods(),
		InactiveSuffix: "(INACTIVO)",
	})

	require.Len(t, s.Periods, 4)
	assert.Equal(t, "2010-2014 (PLN)", s.Periods[0].Period)
	assert.Equal(t, "2014-2018 (PAC)", s.Periods[1].Period)
	assert.Equal(t, "2018-2022 (PAC 2)", s.Periods[2].Period)
	assert.Equal(t, "PLN", s.Periods[2].Party)
	assert.Equal(t, "1250000.5", s.Periods[2].TotalAmount.String())
	assert.Equal(t, 2, s.Periods[2].DonationCount)
	assert.Equal(t, 1, s.Periods[2].DonorCount)
	assert.Equal(t, models.UnassignedPeriod, s.Periods[3].Period, "2003 is before every period")

	require.Len(t, s.Parties, 3)
	assert.Equal(t, "PLN", s.Parties[0].Party)
	assert.Equal(t, 2, s.Parties[0].DonorCount)
	assert.True(t, s.Parties[2].Inactive)
	assert.False(t, s.Parties[0].Inactive)

	assert.Equal(t, 2003, s.Years[0].Year)
	assert.Equal(t, 2021, s.Years[len(s.Years)-1].Year)

	require.Len(t, s.ContractPeriods, 2)
	assert.Equal(t, "2014-2018 (PAC)", s.ContractPeriods[0].Period)
	assert.Equal(t, "CCSS", s.ContractPeriods[0].Agency)
	assert.Equal(t, "MOPT", s.ContractPeriods[1].Agency)
	assert.Equal(t, "6200000", s.ContractPeriods[1].TotalAmount.String())
	assert.Equal(t, 2, s.ContractPeriods[1].ContractorCount)

	require.Len(t, s.Entities, 5)
	assert.Equal(t, "A1", s.Entities[0].EntityID)
	assert.Equal(t, "1250000.5", s.Entities[0].TotalDonated.String())
	assert.Equal(t, "5000000", s.Entities[0].TotalContracted.String())
	assert.Equal(t, []string{"PLN"}, s.Entities[0].Parties)

	assert.Equal(t, 5, s.Stats.Donations)
	assert.Equal(t, 3, s.Stats.Contracts)
	assert.Equal(t, 4, s.Stats.Donors)
	assert.Equal(t, 1, s.Stats.RepeatDonors)
	assert.Equal(t, 2, s.Stats.Contractors)
	assert.Equal(t, "1835000.5", s.Stats.TotalDonated.String())
	assert.Equal(t, "367000.1", s.Stats.MeanDonation.String())
	assert.Equal(t, "1000000", s.Stats.MaxDonation.String())
	require.NotNil(t, s.Stats.FirstDate)
	assert.Equal(t, date(2003, 2, 2), *s.Stats.FirstDate)
	assert.Equal(t, date(2021, 7, 1), *s.Stats.LastDate)
}

func TestByDonationCount(t *testing.T) {
	ds := []models.DonationRecord{
		don("A1", "PLN", "9000000", date(2020, 1, 10)),
		don("B2", "PAC", "100", date(2020, 1, 11)),
		don("C3", "PAC", "100", date(2020, 1, 12)),
		don("D4", "PAC", "100", date(2020, 1, 13)),
		don("E5", "FA", "120", date(2020, 1, 14)),
		don("F6", "FA", "120", date(2020, 1, 15)),
		don("G7", "PUSC", "250", date(2020, 1, 16)),
		don("H8", "PUSC", "100", date(2020, 1, 17)),
	}
	s := Aggregate(slices.Values(ds), slices.Values([]models.ContractRecord{}), Options{Periods: DefaultPeriods()})

	parties := func(ps []models.PartySummary) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Party
		}
		return out
	}
	assert.Equal(t, []string{"PLN", "PUSC", "PAC", "FA"}, parties(s.Parties))

	byCount := ByDonationCount(s.Parties)
	assert.Equal(t, []string{"PAC", "PUSC", "FA", "PLN"}, parties(byCount))
	assert.Equal(t, 3, byCount[0].DonationCount)
	assert.Equal(t, "PLN", s.Parties[0].Party, "input left in amount order")
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	ds, cs := fixture()
	opts := Options{Periods: DefaultPeriods(), InactiveSuffix: "(INACTIVO)"}
	want, err := json.Marshal(Aggregate(slices.Values(ds), slices.Values(cs), opts))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 5))
	for range 20 {
		pd, pc := slices.Clone(ds), slices.Clone(cs)
		rng.Shuffle(len(pd), func(i, j int) { pd[i], pd[j] = pd[j], pd[i] })
		rng.Shuffle(len(pc), func(i, j int) { pc[i], pc[j] = pc[j], pc[i] })

		got, err := json.Marshal(Aggregate(slices.Values(pd), slices.Values(pc), opts))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
		assert.Equal(t, string(want), string(got))
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(slices.Values[[]models.DonationRecord](nil), slices.Values[[]models.ContractRecord](nil), Options{Periods: DefaultPeriods()})

	assert.Empty(t, s.Periods)
	assert.Empty(t, s.Entities)
	assert.True(t, s.Stats.MeanDonation.IsZero())
	assert.Nil(t, s.Stats.FirstDate)
}

func TestPeriods_Assign(t *testing.T) {
	ps := DefaultPeriods()

	tests := []struct {
		date time.Time
		want string
	}{
		{date(2018, 5, 7), "2014-2018 (PAC)"},
		{date(2018, 5, 8), "2018-2022 (PAC 2)"},
		{time.Date(2018, 5, 7, 23, 59, 0, 0, time.UTC), "2014-2018 (PAC)"},
		{date(2006, 5, 7), models.UnassignedPeriod},
		{date(2026, 5, 8), models.UnassignedPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format(time.RFC3339), func(t *testing.T) {
			assert.Equal(t, tt.want, ps.Assign(tt.date))
		})
	}
}

func TestPeriods_Validate(t *testing.T) {
	tests := []struct {
		name    string
		periods Periods
		wantErr string
	}{
		{"defaults", DefaultPeriods(), ""},
		{"empty", Periods{}, "empty"},
		{"unnamed", Periods{{Start: date(2020, 1, 1), End: date(2020, 2, 1)}}, "no name"},
		{"inverted", Periods{{Name: "x", Start: date(2020, 2, 1), End: date(2020, 1, 1)}}, "ends before"},
		{"missing end", Periods{{Name: "x", Start: date(2020, 2, 1)}}, "needs start and end"},
		{"reserved", Periods{{Name: models.UnassignedPeriod, Start: date(2020, 1, 1), End: date(2020, 2, 1)}}, "reserved"},
		{"duplicate", Periods{
			{Name: "x", Start: date(2020, 1, 1), End: date(2020, 2, 1)},
			{Name: "x", Start: date(2021, 1, 1), End: date(2021, 2, 1)},
		}, "duplicate"},
		{"overlap", Periods{
			{Name: "a", Start: date(2020, 1, 1), End: date(2020, 6, 1)},
			{Name: "b", Start: date(2020, 6, 1), End: date(2020, 12, 1)},
		}, "overlap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.periods.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
