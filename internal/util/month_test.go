package util

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-02")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Year != 2025 || m.Month != time.February {
		t.Errorf("Expected 2025-02, got %v", m)
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	cases := []string{"", "2025", "2025-13", "2025-00", "2025/02", "25-02", "2025-2"}
	for _, c := range cases {
		if _, err := ParseMonth(c); err == nil {
			t.Errorf("Expected error for %q", c)
		}
	}
}

func TestMonthString_ZeroPadded(t *testing.T) {
	m := Month{Year: 2025, Month: time.March}
	if m.String() != "2025-03" {
		t.Errorf("Expected 2025-03, got %s", m.String())
	}
}

func TestPrevNext_YearRollover(t *testing.T) {
	jan := Month{Year: 2025, Month: time.January}
	if prev := jan.Prev(); prev.Year != 2024 || prev.Month != time.December {
		t.Errorf("Expected 2024-12, got %v", prev)
	}
	dec := Month{Year: 2024, Month: time.December}
	if next := dec.Next(); next.Year != 2025 || next.Month != time.January {
		t.Errorf("Expected 2025-01, got %v", next)
	}
}

func TestDays(t *testing.T) {
	if d := (Month{Year: 2023, Month: time.February}).Days(); d != 28 {
		t.Errorf("Expected 28 days in Feb 2023, got %d", d)
	}
	if d := (Month{Year: 2024, Month: time.February}).Days(); d != 29 {
		t.Errorf("Expected 29 days in Feb 2024, got %d", d)
	}
	if d := (Month{Year: 2025, Month: time.January}).Days(); d != 31 {
		t.Errorf("Expected 31 days in Jan 2025, got %d", d)
	}
}

func TestDate_ClampsToMonthEnd(t *testing.T) {
	feb := Month{Year: 2023, Month: time.February}
	d := feb.Date(31)
	if d.Day() != 28 {
		t.Errorf("Expected day 28, got %d", d.Day())
	}
	if d := feb.Date(0); d.Day() != 1 {
		t.Errorf("Expected clamp to day 1, got %d", d.Day())
	}
}

func TestContains(t *testing.T) {
	m := Month{Year: 2025, Month: time.June}
	if !m.Contains(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)) {
		t.Error("Expected June 15 to be contained")
	}
	if m.Contains(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected July 1 not to be contained")
	}
}

func TestMonthsBetween(t *testing.T) {
	a := Month{Year: 2024, Month: time.November}
	b := Month{Year: 2025, Month: time.February}
	if got := MonthsBetween(a, b); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := MonthsBetween(b, a); got != -3 {
		t.Errorf("Expected -3, got %d", got)
	}
}

func TestCompare(t *testing.T) {
	a := Month{Year: 2025, Month: time.January}
	b := Month{Year: 2025, Month: time.February}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare ordering broken")
	}
}

func TestIsHistorical(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	if !(Month{Year: 2025, Month: time.May}).IsHistorical(now) {
		t.Error("Expected May 2025 to be historical")
	}
	if (Month{Year: 2025, Month: time.June}).IsHistorical(now) {
		t.Error("Expected current month not to be historical")
	}
}
