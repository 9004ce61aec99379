package models

import "github.com/shopspring/decimal"

// Entity groups every donation and contract sharing one normalized identifier.
type Entity struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Ordinal   int              `json:"ordinal"` // first-seen position in the index
	Donations []DonationRecord `json:"donations"`
	Contracts []ContractRecord `json:"contracts"`
}

// HasDonations reports whether the entity appears in the donations dataset.
func (e *Entity) HasDonations() bool { return len(e.Donations) > 0 }

// HasContracts reports whether the entity appears in the contracts dataset.
func (e *Entity) HasContracts() bool { return len(e.Contracts) > 0 }

// Correlatable reports whether the entity can produce proximity pairs.
func (e *Entity) Correlatable() bool { return e.HasDonations() && e.HasContracts() }

// EventCount is the combined number of donations and contracts.
func (e *Entity) EventCount() int { return len(e.Donations) + len(e.Contracts) }

// TotalDonated sums the entity's donation amounts.
func (e *Entity) TotalDonated() decimal.Decimal {
	total := decimal.Zero
	for _, d := range e.Donations {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalContracted sums the entity's contract amounts.
func (e *Entity) TotalContracted() decimal.Decimal {
	total := decimal.Zero
	for _, c := range e.Contracts {
		total = total.Add(c.Amount)
	}
	return total
}
