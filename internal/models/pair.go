package models

import "github.com/shopspring/decimal"

// Direction tells which event of a pair happened first.
type Direction string

const (
	// DonationFirst means the donation was made on or before the award date.
	DonationFirst Direction = "donation_first"
	// AwardFirst means the contract was awarded before the donation.
	AwardFirst Direction = "award_first"
)

// ProximityPair links one donation and one contract of the same entity.
type ProximityPair struct {
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name,omitempty"`
	Donation   DonationRecord  `json:"donation"`
	Contract   ContractRecord  `json:"contract"`
	DeltaDays  int             `json:"delta_days"` // award_date - donation_date
	Direction  Direction       `json:"direction"`
	Flagged    bool            `json:"flagged"`
	Amount     decimal.Decimal `json:"amount"` // amount used for severity
	Severity   float64         `json:"severity"`
	Sequence   int             `json:"sequence"` // deterministic insertion order
}

// AbsDelta returns |DeltaDays|.
func (p ProximityPair) AbsDelta() int {
	if p.DeltaDays < 0 {
		return -p.DeltaDays
	}
	return p.DeltaDays
}

// Masked returns a copy of p with every identifier passed through MaskID.
func (p ProximityPair) Masked() ProximityPair {
	p.EntityID = MaskID(p.EntityID)
	p.Donation.DonorID = MaskID(p.Donation.DonorID)
	p.Donation.RawDonorID = MaskID(p.Donation.RawDonorID)
	p.Contract.ContractorID = MaskID(p.Contract.ContractorID)
	p.Contract.RawContractorID = MaskID(p.Contract.RawContractorID)
	return p
}

// Truncation records that an entity exceeded the scoring cap and only its
// most recent events were paired.
type Truncation struct {
	EntityID       string `json:"entity_id"`
	DonationsTotal int    `json:"donations_total"`
	DonationsKept  int    `json:"donations_kept"`
	ContractsTotal int    `json:"contracts_total"`
	ContractsKept  int    `json:"contracts_kept"`
}

// RiskLevel buckets an entity's share of suspicious contracts.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
)

// EntityRisk summarizes how many of an entity's contracts were flagged.
type EntityRisk struct {
	EntityID         string    `json:"entity_id"`
	Name             string    `json:"name,omitempty"`
	Party            string    `json:"party,omitempty"`
	FlaggedContracts int       `json:"flagged_contracts"`
	TotalContracts   int       `json:"total_contracts"`
	Percent          float64   `json:"percent"`
	Level            RiskLevel `json:"level"`
	ClosestDeltaDays int       `json:"closest_delta_days"`
}
