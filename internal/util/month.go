package util

import (
	"fmt"
	"time"
)

// Month identifies one calendar month, the partition key for every
// month-scoped table. Its wire format is "YYYY-MM", always zero-padded.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" formatted month key.
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 || s[4] != '-' {
		return Month{}, fmt.Errorf("invalid month format %q, expected YYYY-MM", s)
	}

	var year, month int
	if _, err := fmt.Sscanf(s, "%04d-%02d", &year, &month); err != nil {
		return Month{}, fmt.Errorf("invalid month format %q, expected YYYY-MM: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as its "YYYY-MM" key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Prev returns the previous calendar month, handling year rollover.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the next calendar month, handling year rollover.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day 0 of the next month is the last day of this month
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the date for the given day within the month. Days past the
// end of the month are clamped to the last day (e.g. day 31 in February
// yields Feb 28/29); days below 1 are clamped to 1.
func (m Month) Date(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := m.Days(); day > last {
		day = last
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// First returns midnight on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Compare returns -1 if m is before o, 0 if equal, 1 if after.
func (m Month) Compare(o Month) int {
	if m.Year != o.Year {
		if m.Year < o.Year {
			return -1
		}
		return 1
	}
	if m.Month != o.Month {
		if m.Month < o.Month {
			return -1
		}
		return 1
	}
	return 0
}

// MonthsBetween returns the number of calendar months from a to b
// (negative when b is before a).
func MonthsBetween(a, b Month) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// IsHistorical reports whether the month is strictly before the month
// containing now.
func (m Month) IsHistorical(now time.Time) bool {
	return m.Compare(MonthOf(now)) < 0
}

// Truncate returns midnight on t's day, the granularity at which due
// dates are compared.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
