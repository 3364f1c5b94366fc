// Package period provides the accounting period value type shared by all
// report builders and the period-lock state machine.
//
// Canonical string forms: "2025" (year), "2025-03" (month), "2025-Q1" (quarter).
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type is the period granularity.
type Type string

const (
	TypeMonth   Type = "month"
	TypeQuarter Type = "quarter"
	TypeYear    Type = "year"
)

// Period identifies one accounting period at a given granularity.
// The zero value is invalid; construct via NewMonth/NewQuarter/NewYear or Parse.
type Period struct {
	Type    Type
	Year    int
	Month   time.Month // set when Type == TypeMonth
	Quarter int        // 1..4, set when Type == TypeQuarter
}

// NewMonth creates a monthly period.
func NewMonth(year int, month time.Month) Period {
	return Period{Type: TypeMonth, Year: year, Month: month}
}

// NewQuarter creates a quarterly period.
func NewQuarter(year, quarter int) Period {
	return Period{Type: TypeQuarter, Year: year, Quarter: quarter}
}

// NewYear creates a yearly period.
func NewYear(year int) Period {
	return Period{Type: TypeYear, Year: year}
}

// Parse converts a canonical period string to a Period.
func Parse(s string) (Period, error) {
	s = strings.TrimSpace(s)

	switch {
	case len(s) == 4:
		year, err := strconv.Atoi(s)
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", s, err)
		}
		p := NewYear(year)
		return p, p.Validate()

	case len(s) == 7 && s[4] == '-' && (s[5] == 'Q' || s[5] == 'q'):
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", s, err)
		}
		quarter, err := strconv.Atoi(s[6:])
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", s, err)
		}
		p := NewQuarter(year, quarter)
		return p, p.Validate()

	case len(s) == 7 && s[4] == '-':
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", s, err)
		}
		month, err := strconv.Atoi(s[5:])
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", s, err)
		}
		p := NewMonth(year, time.Month(month))
		return p, p.Validate()
	}

	return Period{}, fmt.Errorf("parse period %q: expected YYYY, YYYY-MM or YYYY-Qn", s)
}

// MustParse parses a canonical period string, panics on error.
// Use only for constants and tests.
func MustParse(s string) Period {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks structural validity.
func (p Period) Validate() error {
	if p.Year < 1900 || p.Year > 9999 {
		return fmt.Errorf("period year %d out of range", p.Year)
	}
	switch p.Type {
	case TypeMonth:
		if p.Month < time.January || p.Month > time.December {
			return fmt.Errorf("period month %d out of range", p.Month)
		}
	case TypeQuarter:
		if p.Quarter < 1 || p.Quarter > 4 {
			return fmt.Errorf("period quarter %d out of range", p.Quarter)
		}
	case TypeYear:
		// nothing beyond year
	default:
		return fmt.Errorf("unknown period type %q", p.Type)
	}
	return nil
}

// String returns the canonical form: "2025", "2025-03" or "2025-Q1".
func (p Period) String() string {
	switch p.Type {
	case TypeMonth:
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	case TypeQuarter:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Quarter)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}

// Range returns the half-open UTC interval [from, to) covered by the period.
func (p Period) Range() (from, to time.Time) {
	switch p.Type {
	case TypeMonth:
		from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	case TypeQuarter:
		from = time.Date(p.Year, time.Month((p.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 3, 0)
	default:
		from = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	}
	return from, to
}

// Previous returns the immediately preceding period of the same granularity.
func (p Period) Previous() Period {
	switch p.Type {
	case TypeMonth:
		if p.Month == time.January {
			return NewMonth(p.Year-1, time.December)
		}
		return NewMonth(p.Year, p.Month-1)
	case TypeQuarter:
		if p.Quarter == 1 {
			return NewQuarter(p.Year-1, 4)
		}
		return NewQuarter(p.Year, p.Quarter-1)
	default:
		return NewYear(p.Year - 1)
	}
}

// FirstOfYear reports whether the period is the first of its calendar year.
// Such periods have no within-year predecessor for the sequential lock rule.
func (p Period) FirstOfYear() bool {
	switch p.Type {
	case TypeMonth:
		return p.Month == time.January
	case TypeQuarter:
		return p.Quarter == 1
	default:
		return true
	}
}

// Equal reports whether two periods identify the same interval.
func (p Period) Equal(q Period) bool {
	return p.Type == q.Type && p.Year == q.Year && p.Month == q.Month && p.Quarter == q.Quarter
}

// Descriptor is the common filter shape accepted by every report builder:
// a period plus an optional explicit date-range override.
type Descriptor struct {
	Period Period

	// Explicit overrides. When both are set they win over Period.Range().
	FromDate *time.Time
	ToDate   *time.Time
}

// Range resolves the effective half-open interval [from, to).
func (d Descriptor) Range() (from, to time.Time) {
	from, to = d.Period.Range()
	if d.FromDate != nil {
		from = *d.FromDate
	}
	if d.ToDate != nil {
		to = *d.ToDate
	}
	return from, to
}
