package models

import (
	"strings"
	"time"
	"unicode"
)

// NormalizeID canonicalizes a donor or contractor identifier: surrounding
// whitespace is trimmed, letters are uppercased and every rune that is not a
// letter or digit is dropped. "1-0234-0567 " and "102340567" are the same ID.
func NormalizeID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// MaskID hides all but the first three characters of an identifier.
func MaskID(id string) string {
	runes := []rune(id)
	if len(runes) <= 3 {
		return id + "***"
	}
	return string(runes[:3]) + "***"
}

// PreferName picks the display name of an entity from two candidates: the
// lexically smallest non-empty one. The result does not depend on the order
// in which records are seen.
func PreferName(current, candidate string) string {
	if candidate != "" && (current == "" || candidate < current) {
		return candidate
	}
	return current
}

// CivilDate drops the clock part of t, keeping the calendar date in UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
// It works on Unix day numbers, so spans beyond time.Duration's range are exact.
func DaysBetween(a, b time.Time) int {
	return int((CivilDate(b).Unix() - CivilDate(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
