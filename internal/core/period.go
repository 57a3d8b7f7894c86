package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a reporting period: a specific month, or a whole year when Month
// is zero. The zero Period is invalid and contains no date.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a user-supplied period reference. Accepted shapes, with
// either "-" or "/" as separator: "2025-01", "01/2025" and the bare year
// "2025". Anything else yields the zero Period, which matches nothing; the
// caller decides what an empty reference means for its screen.
func ParsePeriod(ref string) Period {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, "/", "-"))
	if ref == "" {
		return Period{}
	}
	parts := strings.Split(ref, "-")
	switch len(parts) {
	case 1:
		if y, ok := parseYear(parts[0]); ok {
			return Period{Year: y}
		}
	case 2:
		// Year may come first (2025-01) or last (01-2025).
		if y, ok := parseYear(parts[0]); ok {
			if m, ok := parseMonth(parts[1]); ok {
				return Period{Year: y, Month: m}
			}
		} else if y, ok := parseYear(parts[1]); ok {
			if m, ok := parseMonth(parts[0]); ok {
				return Period{Year: y, Month: m}
			}
		}
	}
	return Period{}
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, false
	}
	return y, true
}

func parseMonth(s string) (time.Month, bool) {
	if len(s) < 1 || len(s) > 2 {
		return 0, false
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return time.Month(m), true
}

// IsZero reports whether the period is invalid or unset.
func (p Period) IsZero() bool {
	return p.Year == 0
}

// Contains reports whether the date falls in the period. Zero dates and zero
// periods never match.
func (p Period) Contains(d Date) bool {
	if p.IsZero() || d.IsZero() {
		return false
	}
	if d.Year() != p.Year {
		return false
	}
	return p.Month == 0 || d.Time.Month() == p.Month
}

// String renders the normalized reference: "2025-01" or "2025".
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	if p.Month == 0 {
		return strconv.Itoa(p.Year)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FilterPeriod returns the invoices whose derived due dates fall in the
// period, preserving order. A zero period selects nothing.
func FilterPeriod(invs []Invoice, p Period) []Invoice {
	var out []Invoice
	for _, inv := range invs {
		if inv.InPeriod(p) {
			out = append(out, inv)
		}
	}
	return out
}
