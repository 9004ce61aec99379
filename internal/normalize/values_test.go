package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"iso date", "2020-01-10", nil},
		{"iso with spaces", "  2020-01-10 ", nil},
		{"rfc3339", "2020-01-10T15:04:05Z", nil},
		{"rfc3339 with offset keeps local calendar day", "2020-01-10T23:30:00-06:00", nil},
		{"datetime", "2020-01-10 08:00:00", nil},
		{"slashed year first", "2020/01/10", nil},
		{"compact", "20200110", nil},
		{"day first slash is ambiguous", "10/01/2020", ErrAmbiguousDate},
		{"month first slash is ambiguous", "01/10/2020", ErrAmbiguousDate},
		{"dotted day first is ambiguous", "10.01.2020", ErrAmbiguousDate},
		{"two digit year is ambiguous", "10-01-20", ErrAmbiguousDate},
		{"empty", "", ErrMissing},
		{"pandas NaT", "NaT", ErrMissing},
		{"garbage", "last tuesday", ErrUnparsable},
		{"impossible date", "2020-02-30", ErrUnparsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDate(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestDateParserExplicitLayout(t *testing.T) {
	p := NewDateParser("02/01/2006")

	got, err := p.Parse("10/01/2020")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}

	// A day-first shape the explicit layout cannot read still fails closed.
	if _, err := p.Parse("10-01-20"); !errors.Is(err, ErrAmbiguousDate) {
		t.Errorf("Parse(10-01-20) error = %v, want ErrAmbiguousDate", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"integer", "1000000", "1000000", nil},
		{"decimal", "1500.75", "1500.75", nil},
		{"thousands grouping", "1,000,000", "1000000", nil},
		{"grouping with cents", "5,000,000.50", "5000000.5", nil},
		{"colon symbol", "₡ 250000", "250000", nil},
		{"dollar symbol", "$12.00", "12", nil},
		{"zero", "0", "0", nil},
		{"negative zero is zero", "-0", "0", nil},
		{"negative", "-100", "", ErrNegativeAmount},
		{"accounting negative", "(100)", "", ErrNegativeAmount},
		{"decimal comma is not guessed", "1.000,50", "", ErrUnparsable},
		{"broken grouping", "1,00", "", ErrUnparsable},
		{"exponent", "1e6", "", ErrUnparsable},
		{"words", "a lot", "", ErrUnparsable},
		{"empty", " ", "", ErrMissing},
		{"nan", "nan", "", ErrMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseAmount(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
