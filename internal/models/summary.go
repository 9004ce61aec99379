package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnassignedPeriod labels records whose date falls outside every configured period.
const UnassignedPeriod = "unassigned"

// PeriodSummary totals donations per (period, party).
type PeriodSummary struct {
	Period        string          `json:"period"`
	Party         string          `json:"party"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DonationCount int             `json:"donation_count"`
	DonorCount    int             `json:"donor_count"`
}

// PartySummary totals donations per party across all periods.
type PartySummary struct {
	Party         string          `json:"party"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DonationCount int             `json:"donation_count"`
	DonorCount    int             `json:"donor_count"`
	Inactive      bool            `json:"inactive"`
}

// YearSummary totals donations per (calendar year, party).
type YearSummary struct {
	Year          int             `json:"year"`
	Party         string          `json:"party"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DonationCount int             `json:"donation_count"`
}

// ContractPeriodSummary totals contract awards per (period, agency).
type ContractPeriodSummary struct {
	Period          string          `json:"period"`
	Agency          string          `json:"agency"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ContractCount   int             `json:"contract_count"`
	ContractorCount int             `json:"contractor_count"`
}

// EntitySummary holds the donor and contractor totals of one entity.
type EntitySummary struct {
	EntityID        string          `json:"entity_id"`
	Name            string          `json:"name,omitempty"`
	DonationCount   int             `json:"donation_count"`
	TotalDonated    decimal.Decimal `json:"total_donated"`
	ContractCount   int             `json:"contract_count"`
	TotalContracted decimal.Decimal `json:"total_contracted"`
	Parties         []string        `json:"parties,omitempty"`
}

// DatasetStats are headline figures over the accepted donations and contracts.
type DatasetStats struct {
	Donations    int             `json:"donations"`
	Contracts    int             `json:"contracts"`
	TotalDonated decimal.Decimal `json:"total_donated"`
	MeanDonation decimal.Decimal `json:"mean_donation"`
	MaxDonation  decimal.Decimal `json:"max_donation"`
	Donors       int             `json:"donors"`
	RepeatDonors int             `json:"repeat_donors"`
	Contractors  int             `json:"contractors"`
	FirstDate    *time.Time      `json:"first_date,omitempty"`
	LastDate     *time.Time      `json:"last_date,omitempty"`
}
