package normalize

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultDonationColumns(), DefaultContractColumns(), DateParser{})
	require.NoError(t, err)
	return n
}

func TestNewNormalizer_RejectsBadMappings(t *testing.T) {
	tests := []struct {
		name      string
		donations ColumnMapping
		contracts ColumnMapping
		wantMsg   string
	}{
		{
			name:      "missing required donation field",
			donations: ColumnMapping{"CÉDULA": FieldDonorID, "MONTO": FieldAmount},
			contracts: DefaultContractColumns(),
			wantMsg:   `required field "date" is not mapped`,
		},
		{
			name:      "unknown field",
			donations: DefaultDonationColumns(),
			contracts: ColumnMapping{"id": FieldContractorID, "amount": FieldAmount, "award_date": FieldAwardDate, "x": Field("bogus")},
			wantMsg:   `maps to unknown field "bogus"`,
		},
		{
			name:      "donation field used on contracts",
			donations: DefaultDonationColumns(),
			contracts: ColumnMapping{"id": FieldContractorID, "amount": FieldAmount, "fecha": FieldDate},
			wantMsg:   `maps to unknown field "date"`,
		},
		{
			name:      "field mapped twice",
			donations: ColumnMapping{"a": FieldDonorID, "b": FieldDonorID, "amount": FieldAmount, "date": FieldDate},
			contracts: DefaultContractColumns(),
			wantMsg:   `field "donor_id" mapped from several columns`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(tt.donations, tt.contracts, DateParser{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDonationSet_AcceptsAndRejects(t *testing.T) {
	n := newTestNormalizer(t)
	rows := []RawRow{
		{"donor_id": "a1 ", "donor_name": "Ana", "party": "PLN", "amount": "1,000,000", "date": "2020-01-10"},
		{"donor_id": "", "amount": "10", "date": "2020-01-10"},
		{"donor_id": "B2", "amount": "-5", "date": "2020-01-10"},
		{"donor_id": "C3", "amount": "5", "date": "10/01/2020"},
		{"donor_id": "D4", "amount": "abc", "date": "2020-01-10"},
		{"donor_id": "E5", "amount": "7", "date": "2021-03-04"},
	}
	set := n.Donations(rows)

	accepted := slices.Collect(set.All())
	rejected := set.Rejections()

	require.Len(t, accepted, 2)
	require.Len(t, rejected, 4)
	assert.Equal(t, set.Len(), len(accepted)+len(rejected))

	first := accepted[0]
	assert.Equal(t, "A1", first.DonorID)
	assert.Equal(t, "a1 ", first.RawDonorID)
	assert.Equal(t, "Ana", first.DonorName)
	assert.Equal(t, "PLN", first.Party)
	assert.Equal(t, "1000000", first.Amount.String())
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, 5, accepted[1].Row)

	assert.Equal(t, []int{1, 2, 3, 4}, []int{rejected[0].Row, rejected[1].Row, rejected[2].Row, rejected[3].Row})
	assert.Equal(t, "donor_id", rejected[0].Field)
	assert.Equal(t, "amount", rejected[1].Field)
	assert.Contains(t, rejected[1].Reason, "negative amount")
	assert.Equal(t, "date", rejected[2].Field)
	assert.Contains(t, rejected[2].Reason, "ambiguous date")
	assert.Equal(t, "donations", rejected[3].Dataset)
}

func TestDonationSet_IsRestartable(t *testing.T) {
	n := newTestNormalizer(t)
	set := n.Donations([]RawRow{
		{"donor_id": "A1", "amount": "1", "date": "2020-01-01"},
		{"donor_id": "A2", "amount": "2", "date": "2020-01-02"},
	})

	first := slices.Collect(set.All())
	second := slices.Collect(set.All())
	assert.Equal(t, first, second)

	// Stopping early must not break a later full pass.
	for range set.All() {
		break
	}
	assert.Len(t, slices.Collect(set.All()), 2)
}

func TestContractSet_CustomColumns(t *testing.T) {
	n, err := NewNormalizer(DefaultDonationColumns(), ColumnMapping{
		"Cédula Proveedor":   FieldContractorID,
		"Nombre Proveedor":   FieldContractorName,
		"Institución":        FieldAgency,
		"Nro Contrato":       FieldContractNumber,
		"Monto Adjudicado":   FieldAmount,
		"Fecha Adjudicación": FieldAwardDate,
	}, DateParser{})
	require.NoError(t, err)

	set := n.Contracts([]RawRow{
		{"Cédula Proveedor": " 3-101-123456", "Nombre Proveedor": "Constructora X", "Institución": "MOPT",
			"Nro Contrato": "2020-000123", "Monto Adjudicado": "5000000", "Fecha Adjudicación": "2020-02-01"},
		{"Cédula Proveedor": "3-101-999", "Monto Adjudicado": "100"},
	})

	accepted := slices.Collect(set.All())
	require.Len(t, accepted, 1)
	c := accepted[0]
	assert.Equal(t, "3101123456", c.ContractorID)
	assert.Equal(t, " 3-101-123456", c.RawContractorID)
	assert.Equal(t, "Constructora X", c.ContractorName)
	assert.Equal(t, "MOPT", c.Agency)
	assert.Equal(t, "2020-000123", c.ContractNumber)
	assert.Equal(t, "2020-02-01", c.AwardDate.Format("2006-01-02"))

	rejected := set.Rejections()
	require.Len(t, rejected, 1)
	assert.Equal(t, "award_date", rejected[0].Field)
	assert.Equal(t, "missing value", rejected[0].Reason)
}

func TestValidationErrorMatchesKinds(t *testing.T) {
	err := invalid(3, FieldDate, "01/02/2020", ErrAmbiguousDate)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrAmbiguousDate))
	assert.False(t, errors.Is(err, ErrMissing))
	assert.Equal(t, `row 3: date: ambiguous date "01/02/2020"`, err.Error())
}
