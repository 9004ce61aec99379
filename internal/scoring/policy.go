package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DirectionFilter selects which pair directions can be flagged.
type DirectionFilter string

const (
	// BeforeOnly flags donation-before-award pairs only. Award-before-donation
	// pairs are kept unflagged for the audit trail.
	BeforeOnly DirectionFilter = "before-only"
	// Both flags pairs in either direction.
	Both DirectionFilter = "both"
)

// AmountBasis selects which amount feeds the severity score.
type AmountBasis string

const (
	BasisDonation AmountBasis = "donation"
	BasisContract AmountBasis = "contract"
	BasisCombined AmountBasis = "combined"
)

// Weights balance proximity against amount in the severity score.
type Weights struct {
	Proximity float64 `yaml:"proximity" json:"proximity"`
	Amount    float64 `yaml:"amount" json:"amount"`
}

// Policy configures pairing, flagging and severity.
type Policy struct {
	WindowDays      int
	AuditWindowDays int
	Direction       DirectionFilter
	EntityCap       int
	PerSideLimit    int
	ReversePenalty  float64
	Weights         Weights
	Basis           AmountBasis
}

// Defaults used when a run does not override them.
const (
	DefaultWindowDays      = 90
	DefaultAuditWindowDays = 365
	DefaultEntityCap       = 500
	DefaultReversePenalty  = 0.5
)

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		WindowDays:      DefaultWindowDays,
		AuditWindowDays: DefaultAuditWindowDays,
		Direction:       BeforeOnly,
		EntityCap:       DefaultEntityCap,
		PerSideLimit:    DefaultEntityCap / 2,
		ReversePenalty:  DefaultReversePenalty,
		Weights:         Weights{Proximity: 0.6, Amount: 0.4},
		Basis:           BasisCombined,
	}
}

// Validate reports every invalid setting at once.
func (p Policy) Validate() error {
	var errs []error
	if p.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("window_days must be >= 0, got %d", p.WindowDays))
	}
	if p.AuditWindowDays < 0 {
		errs = append(errs, fmt.Errorf("audit_window_days must be >= 0, got %d", p.AuditWindowDays))
	}
	switch p.Direction {
	case BeforeOnly, Both:
	default:
		errs = append(errs, fmt.Errorf("unknown direction %q", p.Direction))
	}
	switch p.Basis {
	case BasisDonation, BasisContract, BasisCombined:
	default:
		errs = append(errs, fmt.Errorf("unknown amount_basis %q", p.Basis))
	}
	if p.EntityCap < 2 {
		errs = append(errs, fmt.Errorf("entity_cap must be >= 2, got %d", p.EntityCap))
	}
	// Two full sides must fit under the cap, so a truncated entity never
	// keeps more events than the cap allows.
	if p.PerSideLimit < 1 || p.PerSideLimit > p.EntityCap/2 {
		errs = append(errs, fmt.Errorf("per_side_limit must be in [1, entity_cap/2], got %d with entity_cap %d", p.PerSideLimit, p.EntityCap))
	}
	if p.ReversePenalty < 0 || p.ReversePenalty > 1 {
		errs = append(errs, fmt.Errorf("reverse_penalty must be in [0, 1], got %g", p.ReversePenalty))
	}
	if p.Weights.Proximity < 0 || p.Weights.Amount < 0 {
		errs = append(errs, errors.New("weights must not be negative"))
	} else if p.Weights.Proximity+p.Weights.Amount == 0 {
		errs = append(errs, errors.New("weights must not both be zero"))
	}
	return errors.Join(errs...)
}

// auditWindow is the bound for unflagged award-first pairs under BeforeOnly.
func (p Policy) auditWindow() int {
	return max(p.WindowDays, p.AuditWindowDays)
}

// basis picks the amount a pair is scored on.
func (p Policy) basis(donation, contract decimal.Decimal) decimal.Decimal {
	switch p.Basis {
	case BasisDonation:
		return donation
	case BasisContract:
		return contract
	default:
		return donation.Add(contract)
	}
}

// Severity scores a pair in [0, 1]. Proximity is 1 at delta 0 and falls
// linearly to 0 at the window edge. Amount is relative to maxAmount.
// Reverse pairs are multiplied by the reverse penalty.
func (p Policy) Severity(delta int, amount, maxAmount decimal.Decimal, reverse bool) float64 {
	abs := math.Abs(float64(delta))

	var prox float64
	switch {
	case p.WindowDays == 0 && delta == 0:
		prox = 1
	case p.WindowDays > 0:
		prox = clamp01(1 - abs/float64(p.WindowDays))
	}

	var amt float64
	if maxAmount.IsPositive() {
		amt = clamp01(amount.Div(maxAmount).InexactFloat64())
	}

	total := p.Weights.Proximity + p.Weights.Amount
	if total <= 0 {
		return 0
	}
	s := (p.Weights.Proximity*prox + p.Weights.Amount*amt) / total
	if reverse {
		s *= p.ReversePenalty
	}
	return s
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
