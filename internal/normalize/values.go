package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/shopspring/decimal"
)

// defaultLayouts are year-first and therefore never ambiguous.
var defaultLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"20060102",
}

// dayMonthPattern matches numeric dates whose first component could be a day
// or a month (03/04/2020, 3-4-20, 03.04.2020).
var dayMonthPattern = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}`)

// groupedAmount accepts comma thousands separators only in complete groups.
var groupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// DateParser parses calendar dates. Explicit layouts are tried before the
// ambiguity check so an operator who knows the source convention can accept
// day-first dates.
type DateParser struct {
	layouts []string
}

// NewDateParser returns a parser trying the given layouts before the defaults.
func NewDateParser(layouts ...string) DateParser {
	return DateParser{layouts: append([]string(nil), layouts...)}
}

// Parse returns the calendar date in UTC.
func (p DateParser) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return time.Time{}, ErrMissing
	}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.CivilDate(t), nil
		}
	}
	if dayMonthPattern.MatchString(s) {
		return time.Time{}, ErrAmbiguousDate
	}
	for _, layout := range defaultLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.CivilDate(t), nil
		}
	}
	return time.Time{}, ErrUnparsable
}

// ParseDate parses s with the default layouts only.
func ParseDate(s string) (time.Time, error) {
	return DateParser{}.Parse(s)
}

// ParseAmount parses a non-negative monetary amount. Currency symbols and
// spaces are ignored; a comma is only accepted as a thousands separator in
// complete groups of three, so "1.000,50" fails instead of being guessed.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return decimal.Zero, ErrMissing
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '₡', '$', '€', ' ', '\u00a0', '_':
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if strings.Contains(s, ",") {
		if !groupedAmount.MatchString(s) {
			return decimal.Zero, ErrUnparsable
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrUnparsable
	}
	if negative && !d.IsZero() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "nat", "null", "none", "n/a":
		return true
	}
	return false
}
