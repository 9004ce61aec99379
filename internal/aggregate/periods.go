package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
)

// Period is a named, inclusive calendar range, usually one administration.
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of t is within the period.
func (p Period) Contains(t time.Time) bool {
	d := models.CivilDate(t)
	return !d.Before(models.CivilDate(p.Start)) && !d.After(models.CivilDate(p.End))
}

// Periods is an ordered period table.
type Periods []Period

// DefaultPeriods are the Costa Rican administrations from 2006 to 2026.
func DefaultPeriods() Periods {
	return Periods{
		{Name: "2006-2010 (PLN 2)", Start: date(2006, 5, 8), End: date(2010, 5, 7)},
		{Name: "2010-2014 (PLN)", Start: date(2010, 5, 8), End: date(2014, 5, 7)},
		{Name: "2014-2018 (PAC)", Start: date(2014, 5, 8), End: date(2018, 5, 7)},
		{Name: "2018-2022 (PAC 2)", Start: date(2018, 5, 8), End: date(2022, 5, 7)},
		{Name: "2022-2026 (PPSD)", Start: date(2022, 5, 8), End: date(2026, 5, 7)},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Assign returns the name of the period containing t, or UnassignedPeriod.
func (ps Periods) Assign(t time.Time) string {
	for _, p := range ps {
		if p.Contains(t) {
			return p.Name
		}
	}
	return models.UnassignedPeriod
}

// Validate checks that periods are named, unique, not inverted and
// do not overlap.
func (ps Periods) Validate() error {
	if len(ps) == 0 {
		return errors.New("period table is empty")
	}
	var errs []error
	seen := make(map[string]bool)
	for i, p := range ps {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("period %d has no name", i))
		case p.Name == models.UnassignedPeriod:
			errs = append(errs, fmt.Errorf("period %d uses reserved name %q", i, p.Name))
		case seen[p.Name]:
			errs = append(errs, fmt.Errorf("duplicate period %q", p.Name))
		}
		seen[p.Name] = true
		if p.Start.IsZero() || p.End.IsZero() {
			errs = append(errs, fmt.Errorf("period %q needs start and end", p.Name))
		} else if p.End.Before(p.Start) {
			errs = append(errs, fmt.Errorf("period %q ends before it starts", p.Name))
		}
	}

	sorted := slices.Clone(ps)
	slices.SortFunc(sorted, func(a, b Period) int { return a.Start.Compare(b.Start) })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if !cur.Start.After(prev.End) {
			errs = append(errs, fmt.Errorf("periods %q and %q overlap", prev.Name, cur.Name))
		}
	}
	return errors.Join(errs...)
}
