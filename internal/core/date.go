package core

import "time"

// Date is a calendar date at UTC midnight. The zero value is the sentinel for
// absent or unparseable dates: it never matches a period and is never overdue.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date at UTC midnight.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses "2006-01-02" (HTML date inputs) or "02/01/2006" input.
// It is total: anything else yields the zero Date.
func ParseDate(s string) Date {
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}
		}
	}
	return Date{}
}

// Display renders the date as dd/mm/yyyy, or "--" for the zero sentinel.
func (d Date) Display() string {
	if d.IsZero() {
		return "--"
	}
	return d.Format("02/01/2006")
}

// ISO renders the date as yyyy-mm-dd for storage, or "" for the zero sentinel.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Before reports whether d is strictly before o, treating both as dates.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}
