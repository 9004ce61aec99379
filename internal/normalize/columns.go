package normalize

import (
	"errors"
	"fmt"
	"sort"
)

// Field is a canonical column of the donation or contract datasets.
type Field string

const (
	FieldDonorID        Field = "donor_id"
	FieldDonorName      Field = "donor_name"
	FieldParty          Field = "party"
	FieldDate           Field = "date"
	FieldContractorID   Field = "contractor_id"
	FieldContractorName Field = "contractor_name"
	FieldAgency         Field = "agency"
	FieldAwardDate      Field = "award_date"
	FieldContractNumber Field = "contract_number"
	FieldAmount         Field = "amount"
)

// DonationFields lists the canonical donation columns; the first three are required.
var DonationFields = []Field{FieldDonorID, FieldAmount, FieldDate, FieldDonorName, FieldParty}

// ContractFields lists the canonical contract columns; the first three are required.
var ContractFields = []Field{FieldContractorID, FieldAmount, FieldAwardDate, FieldContractorName, FieldAgency, FieldContractNumber}

const requiredFields = 3

// ColumnMapping maps a raw column name to the canonical field it feeds.
type ColumnMapping map[string]Field

// DefaultDonationColumns maps each canonical donation field from a column of the same name.
func DefaultDonationColumns() ColumnMapping { return identity(DonationFields) }

// DefaultContractColumns maps each canonical contract field from a column of the same name.
func DefaultContractColumns() ColumnMapping { return identity(ContractFields) }

func identity(fields []Field) ColumnMapping {
	m := make(ColumnMapping, len(fields))
	for _, f := range fields {
		m[string(f)] = f
	}
	return m
}

// ValidateDonations checks the mapping against the donation schema.
func (m ColumnMapping) ValidateDonations() error { return m.validate(DonationFields) }

// ValidateContracts checks the mapping against the contract schema.
func (m ColumnMapping) ValidateContracts() error { return m.validate(ContractFields) }

// validate reports every problem at once: unknown targets, fields mapped from
// more than one raw column and missing required fields.
func (m ColumnMapping) validate(schema []Field) error {
	allowed := make(map[Field]bool, len(schema))
	for _, f := range schema {
		allowed[f] = true
	}

	var errs []error
	sources := make(map[Field][]string)
	for _, raw := range m.rawColumns() {
		f := m[raw]
		if raw == "" {
			errs = append(errs, fmt.Errorf("empty raw column name for field %q", f))
			continue
		}
		if !allowed[f] {
			errs = append(errs, fmt.Errorf("column %q maps to unknown field %q", raw, f))
			continue
		}
		sources[f] = append(sources[f], raw)
	}
	for _, f := range schema {
		if len(sources[f]) > 1 {
			errs = append(errs, fmt.Errorf("field %q mapped from several columns %q", f, sources[f]))
		}
	}
	for _, f := range schema[:requiredFields] {
		if len(sources[f]) == 0 {
			errs = append(errs, fmt.Errorf("required field %q is not mapped", f))
		}
	}
	return errors.Join(errs...)
}

// columnFor inverts the mapping. Only meaningful once validated.
func (m ColumnMapping) columnFor() map[Field]string {
	inv := make(map[Field]string, len(m))
	for raw, f := range m {
		inv[f] = raw
	}
	return inv
}

func (m ColumnMapping) rawColumns() []string {
	cols := make([]string, 0, len(m))
	for raw := range m {
		cols = append(cols, raw)
	}
	sort.Strings(cols)
	return cols
}
