// Package models defines the canonical records and derived outputs of the
// donation/contract correlation pipeline.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationRecord is a validated political donation row.
// Values are copied out of the normalizer and never modified afterwards.
type DonationRecord struct {
	Row        int             `json:"row"`          // 0-based index in the raw dataset
	DonorID    string          `json:"donor_id"`     // normalized identifier
	RawDonorID string          `json:"raw_donor_id"` // identifier as it appeared in the source
	DonorName  string          `json:"donor_name,omitempty"`
	Party      string          `json:"party,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
}

// ContractRecord is a validated government contract award row.
type ContractRecord struct {
	Row             int             `json:"row"`
	ContractorID    string          `json:"contractor_id"`
	RawContractorID string          `json:"raw_contractor_id"`
	ContractorName  string          `json:"contractor_name,omitempty"`
	Agency          string          `json:"agency,omitempty"`
	ContractNumber  string          `json:"contract_number,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	AwardDate       time.Time       `json:"award_date"`
}

// Rejection describes a raw row excluded by the normalizer.
type Rejection struct {
	Dataset string `json:"dataset"` // "donations" or "contracts"
	Row     int    `json:"row_index"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason"`
}

// Dataset names used in rejections and logs.
const (
	DatasetDonations = "donations"
	DatasetContracts = "contracts"
)
