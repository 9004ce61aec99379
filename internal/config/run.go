package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raphaelgruber/rastreador/internal/aggregate"
	"github.com/raphaelgruber/rastreador/internal/normalize"
	"github.com/raphaelgruber/rastreador/internal/scoring"
	"gopkg.in/yaml.v3"
)

// PeriodLayout is the date format of period boundaries in YAML.
const PeriodLayout = "2006-01-02"

// PeriodConfig is one named, inclusive date range.
type PeriodConfig struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// ColumnsConfig maps raw column names to canonical fields per dataset.
type ColumnsConfig struct {
	Donations map[string]string `yaml:"donations" json:"donations"`
	Contracts map[string]string `yaml:"contracts" json:"contracts"`
}

// RunConfig is everything a single analysis can override.
type RunConfig struct {
	WindowDays      int             `yaml:"window_days" json:"window_days"`
	Direction       string          `yaml:"direction" json:"direction"`
	AuditWindowDays int             `yaml:"audit_window_days" json:"audit_window_days"`
	EntityCap       int             `yaml:"entity_cap" json:"entity_cap"`
	PerSideLimit    int             `yaml:"per_side_limit" json:"per_side_limit"`
	ReversePenalty  float64         `yaml:"reverse_penalty" json:"reverse_penalty"`
	Weights         scoring.Weights `yaml:"weights" json:"weights"`
	AmountBasis     string          `yaml:"amount_basis" json:"amount_basis"`
	TopN            int             `yaml:"top_n" json:"top_n"`
	InactiveSuffix  string          `yaml:"inactive_suffix" json:"inactive_suffix"`
	DateLayouts     []string        `yaml:"date_layouts,omitempty" json:"date_layouts,omitempty"`
	Periods         []PeriodConfig  `yaml:"periods" json:"periods"`
	Columns         ColumnsConfig   `yaml:"columns" json:"columns"`
}

// DefaultRunConfig returns the configuration used when nothing is overridden.
func DefaultRunConfig() RunConfig {
	p := scoring.DefaultPolicy()
	cfg := RunConfig{
		WindowDays:      p.WindowDays,
		Direction:       string(p.Direction),
		AuditWindowDays: p.AuditWindowDays,
		EntityCap:       p.EntityCap,
		PerSideLimit:    p.PerSideLimit,
		ReversePenalty:  p.ReversePenalty,
		Weights:         p.Weights,
		AmountBasis:     string(p.Basis),
		InactiveSuffix:  "(INACTIVO)",
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills sections a YAML file left empty.
func (c *RunConfig) applyDefaults() {
	if c.PerSideLimit == 0 {
		c.PerSideLimit = c.EntityCap / 2
	}
	if len(c.Periods) == 0 {
		for _, p := range aggregate.DefaultPeriods() {
			c.Periods = append(c.Periods, PeriodConfig{
				Name:  p.Name,
				Start: p.Start.Format(PeriodLayout),
				End:   p.End.Format(PeriodLayout),
			})
		}
	}
	if len(c.Columns.Donations) == 0 {
		c.Columns.Donations = toRaw(normalize.DefaultDonationColumns())
	}
	if len(c.Columns.Contracts) == 0 {
		c.Columns.Contracts = toRaw(normalize.DefaultContractColumns())
	}
}

// LoadRunConfig reads a YAML run configuration. An empty path returns the
// defaults. Unknown keys and invalid values are configuration errors.
func LoadRunConfig(path string) (RunConfig, error) {
	if path == "" {
		return DefaultRunConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("open run config: %w", err)
	}
	defer f.Close()
	return ParseRunConfig(f)
}

// ParseRunConfig decodes YAML over the defaults and validates the result.
func ParseRunConfig(r io.Reader) (RunConfig, error) {
	cfg := DefaultRunConfig()
	cfg.PerSideLimit = 0
	cfg.Periods = nil
	cfg.Columns = ColumnsConfig{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RunConfig{}, invalid(fmt.Errorf("decode run config: %w", err))
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems in one
// *ConfigurationError.
func (c RunConfig) Validate() error {
	var errs []error
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.TopN < 0 {
		errs = append(errs, fmt.Errorf("top_n must be >= 0, got %d", c.TopN))
	}
	if _, err := c.PeriodTable(); err != nil {
		errs = append(errs, err)
	}
	if err := c.DonationColumns().ValidateDonations(); err != nil {
		errs = append(errs, fmt.Errorf("donation columns: %w", err))
	}
	if err := c.ContractColumns().ValidateContracts(); err != nil {
		errs = append(errs, fmt.Errorf("contract columns: %w", err))
	}
	for i, l := range c.DateLayouts {
		if l == "" {
			errs = append(errs, fmt.Errorf("date_layouts[%d] is empty", i))
		}
	}
	return invalid(errs...)
}

// Policy converts the scoring section.
func (c RunConfig) Policy() scoring.Policy {
	return scoring.Policy{
		WindowDays:      c.WindowDays,
		AuditWindowDays: c.AuditWindowDays,
		Direction:       scoring.DirectionFilter(c.Direction),
		EntityCap:       c.EntityCap,
		PerSideLimit:    c.PerSideLimit,
		ReversePenalty:  c.ReversePenalty,
		Weights:         c.Weights,
		Basis:           scoring.AmountBasis(c.AmountBasis),
	}
}

// PeriodTable parses and validates the period boundaries.
func (c RunConfig) PeriodTable() (aggregate.Periods, error) {
	var errs []error
	ps := make(aggregate.Periods, 0, len(c.Periods))
	for _, p := range c.Periods {
		start, err := time.Parse(PeriodLayout, p.Start)
		if err != nil {
			errs = append(errs, fmt.Errorf("period %q start: %w", p.Name, err))
		}
		end, err := time.Parse(PeriodLayout, p.End)
		if err != nil {
			errs = append(errs, fmt.Errorf("period %q end: %w", p.Name, err))
		}
		ps = append(ps, aggregate.Period{Name: p.Name, Start: start, End: end})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// DonationColumns converts the donation column mapping.
func (c RunConfig) DonationColumns() normalize.ColumnMapping {
	return fromRaw(c.Columns.Donations)
}

// ContractColumns converts the contract column mapping.
func (c RunConfig) ContractColumns() normalize.ColumnMapping {
	return fromRaw(c.Columns.Contracts)
}

// DateParser returns a parser trying the configured layouts first.
func (c RunConfig) DateParser() normalize.DateParser {
	return normalize.NewDateParser(c.DateLayouts...)
}

// Aggregation returns the aggregator options.
func (c RunConfig) Aggregation() (aggregate.Options, error) {
	ps, err := c.PeriodTable()
	if err != nil {
		return aggregate.Options{}, invalid(err)
	}
	return aggregate.Options{Periods: ps, InactiveSuffix: c.InactiveSuffix}, nil
}

// YAML renders the configuration as it would be written to a file.
func (c RunConfig) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func toRaw(m normalize.ColumnMapping) map[string]string {
	out := make(map[string]string, len(m))
	for raw, f := range m {
		out[raw] = string(f)
	}
	return out
}

func fromRaw(m map[string]string) normalize.ColumnMapping {
	out := make(normalize.ColumnMapping, len(m))
	for raw, f := range m {
		out[raw] = normalize.Field(f)
	}
	return out
}
