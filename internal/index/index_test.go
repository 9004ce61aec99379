package index

import (
	"slices"
	"testing"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donation(raw string, amount int64) models.DonationRecord {
	return models.DonationRecord{
		DonorID:    models.NormalizeID(raw),
		RawDonorID: raw,
		Amount:     decimal.NewFromInt(amount),
		Date:       time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func contract(raw string, amount int64) models.ContractRecord {
	return models.ContractRecord{
		ContractorID:    models.NormalizeID(raw),
		RawContractorID: raw,
		Amount:          decimal.NewFromInt(amount),
		AwardDate:       time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild_MergesNormalizedIdentifiers(t *testing.T) {
	idx := Build(
		slices.Values([]models.DonationRecord{donation("a1 ", 1000000)}),
		slices.Values([]models.ContractRecord{contract("A1", 5000000)}),
	)

	require.Equal(t, 1, idx.Len())
	e, ok := idx.Get("A1")
	require.True(t, ok)
	assert.Len(t, e.Donations, 1)
	assert.Len(t, e.Contracts, 1)
	assert.True(t, e.Correlatable())

	viaRaw, ok := idx.Lookup(" a-1")
	require.True(t, ok)
	assert.Same(t, e, viaRaw)
}

func TestBuild_KeepsOneSidedEntities(t *testing.T) {
	idx := Build(
		slices.Values([]models.DonationRecord{donation("D1", 1), donation("M1", 2), donation("D1", 3)}),
		slices.Values([]models.ContractRecord{contract("C1", 4), contract("m1", 5)}),
	)

	assert.Equal(t, []string{"D1", "M1", "C1"}, idx.IDs())

	stats := idx.Stats()
	assert.Equal(t, Stats{
		Entities:       3,
		Matched:        1,
		DonorOnly:      1,
		ContractorOnly: 1,
		DonationEvents: 3,
		ContractEvents: 2,
	}, stats)

	var correlatable []string
	for e := range idx.Correlatable() {
		correlatable = append(correlatable, e.ID)
	}
	assert.Equal(t, []string{"M1"}, correlatable)

	d1, _ := idx.Get("D1")
	assert.Equal(t, 0, d1.Ordinal)
	assert.Equal(t, "1", d1.Donations[0].Amount.String())
	assert.Equal(t, "3", d1.Donations[1].Amount.String(), "records keep insertion order")
}

func TestBuild_NameSkipsEmpty(t *testing.T) {
	d := donation("X9", 1)
	c := contract("X9", 1)
	c.ContractorName = "Servicios X"

	idx := Build(slices.Values([]models.DonationRecord{d}), slices.Values([]models.ContractRecord{c}))
	e, _ := idx.Get("X9")
	assert.Equal(t, "Servicios X", e.Name)
}

func TestBuild_NameIndependentOfOrder(t *testing.T) {
	a := donation("X9", 1)
	a.DonorName = "Servicios X SA"
	b := donation("X9", 2)
	b.DonorName = "SERVICIOS X"
	c := contract("X9", 1)
	c.ContractorName = "Servicios X Sociedad Anonima"

	forward := Build(slices.Values([]models.DonationRecord{a, b}), slices.Values([]models.ContractRecord{c}))
	backward := Build(slices.Values([]models.DonationRecord{b, a}), slices.Values([]models.ContractRecord{c}))

	e1, _ := forward.Get("X9")
	e2, _ := backward.Get("X9")
	assert.Equal(t, "SERVICIOS X", e1.Name)
	assert.Equal(t, e1.Name, e2.Name)
}
