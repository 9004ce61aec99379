// Package normalize turns raw tabular rows into validated donation and
// contract records, collecting rejected rows instead of aborting.
package normalize

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/raphaelgruber/rastreador/internal/models"
)

// RawRow is one input row keyed by raw column name.
type RawRow map[string]string

// Normalizer validates rows against a pair of column mappings.
type Normalizer struct {
	donationCols map[Field]string
	contractCols map[Field]string
	dates        DateParser
}

// NewNormalizer validates both mappings and returns a normalizer for them.
func NewNormalizer(donations, contracts ColumnMapping, dates DateParser) (*Normalizer, error) {
	if err := donations.ValidateDonations(); err != nil {
		return nil, fmt.Errorf("donation columns: %w", err)
	}
	if err := contracts.ValidateContracts(); err != nil {
		return nil, fmt.Errorf("contract columns: %w", err)
	}
	return &Normalizer{
		donationCols: donations.columnFor(),
		contractCols: contracts.columnFor(),
		dates:        dates,
	}, nil
}

// DonationSet is a lazy view over raw donation rows. Iterating twice parses
// twice and yields the same records in the same order.
type DonationSet struct {
	n    *Normalizer
	rows []RawRow
}

// Donations wraps raw donation rows. Nothing is parsed until iteration.
func (n *Normalizer) Donations(rows []RawRow) *DonationSet {
	return &DonationSet{n: n, rows: rows}
}

// Len is the number of raw rows, accepted or not.
func (s *DonationSet) Len() int { return len(s.rows) }

// All yields every accepted donation in input order.
func (s *DonationSet) All() iter.Seq[models.DonationRecord] {
	return func(yield func(models.DonationRecord) bool) {
		for i, row := range s.rows {
			rec, err := s.n.donation(i, row)
			if err != nil {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Rejections lists every row All skips, in input order.
func (s *DonationSet) Rejections() []models.Rejection {
	var out []models.Rejection
	for i, row := range s.rows {
		if _, err := s.n.donation(i, row); err != nil {
			out = append(out, rejection(models.DatasetDonations, i, err))
		}
	}
	return out
}

// ContractSet is the contract counterpart of DonationSet.
type ContractSet struct {
	n    *Normalizer
	rows []RawRow
}

// Contracts wraps raw contract rows. Nothing is parsed until iteration.
func (n *Normalizer) Contracts(rows []RawRow) *ContractSet {
	return &ContractSet{n: n, rows: rows}
}

// Len is the number of raw rows, accepted or not.
func (s *ContractSet) Len() int { return len(s.rows) }

// All yields every accepted contract in input order.
func (s *ContractSet) All() iter.Seq[models.ContractRecord] {
	return func(yield func(models.ContractRecord) bool) {
		for i, row := range s.rows {
			rec, err := s.n.contract(i, row)
			if err != nil {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Rejections lists every row All skips, in input order.
func (s *ContractSet) Rejections() []models.Rejection {
	var out []models.Rejection
	for i, row := range s.rows {
		if _, err := s.n.contract(i, row); err != nil {
			out = append(out, rejection(models.DatasetContracts, i, err))
		}
	}
	return out
}

func (n *Normalizer) donation(i int, row RawRow) (models.DonationRecord, error) {
	get := func(f Field) string { return value(row, n.donationCols, f) }

	rawID := cell(row, n.donationCols, FieldDonorID)
	id := models.NormalizeID(get(FieldDonorID))
	if id == "" {
		return models.DonationRecord{}, invalid(i, FieldDonorID, get(FieldDonorID), ErrMissing)
	}
	amount, err := ParseAmount(get(FieldAmount))
	if err != nil {
		return models.DonationRecord{}, invalid(i, FieldAmount, get(FieldAmount), err)
	}
	date, err := n.dates.Parse(get(FieldDate))
	if err != nil {
		return models.DonationRecord{}, invalid(i, FieldDate, get(FieldDate), err)
	}
	return models.DonationRecord{
		Row:        i,
		DonorID:    id,
		RawDonorID: rawID,
		DonorName:  get(FieldDonorName),
		Party:      get(FieldParty),
		Amount:     amount,
		Date:       date,
	}, nil
}

func (n *Normalizer) contract(i int, row RawRow) (models.ContractRecord, error) {
	get := func(f Field) string { return value(row, n.contractCols, f) }

	rawID := cell(row, n.contractCols, FieldContractorID)
	id := models.NormalizeID(get(FieldContractorID))
	if id == "" {
		return models.ContractRecord{}, invalid(i, FieldContractorID, get(FieldContractorID), ErrMissing)
	}
	amount, err := ParseAmount(get(FieldAmount))
	if err != nil {
		return models.ContractRecord{}, invalid(i, FieldAmount, get(FieldAmount), err)
	}
	date, err := n.dates.Parse(get(FieldAwardDate))
	if err != nil {
		return models.ContractRecord{}, invalid(i, FieldAwardDate, get(FieldAwardDate), err)
	}
	return models.ContractRecord{
		Row:             i,
		ContractorID:    id,
		RawContractorID: rawID,
		ContractorName:  get(FieldContractorName),
		Agency:          get(FieldAgency),
		ContractNumber:  get(FieldContractNumber),
		Amount:          amount,
		AwardDate:       date,
	}, nil
}

// value reads a mapped column, returning "" for unmapped fields and absent cells.
func value(row RawRow, cols map[Field]string, f Field) string {
	raw, ok := cols[f]
	if !ok {
		return ""
	}
	v := strings.TrimSpace(row[raw])
	if isBlank(v) {
		return ""
	}
	return v
}

// cell returns a mapped column exactly as it appears in the row.
func cell(row RawRow, cols map[Field]string, f Field) string {
	raw, ok := cols[f]
	if !ok {
		return ""
	}
	return row[raw]
}

func rejection(dataset string, i int, err error) models.Rejection {
	r := models.Rejection{Dataset: dataset, Row: i, Reason: err.Error()}
	var ve *ValidationError
	if errors.As(err, &ve) {
		r.Field = string(ve.Field)
		r.Reason = ve.Reason.Error()
		if ve.Value != "" {
			r.Reason = fmt.Sprintf("%s %q", ve.Reason, ve.Value)
		}
	}
	return r
}
