package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates. Ledger documents and
// extended-date sets store dates in this form, so lexicographic order on
// Date equals chronological order.
const DateLayout = "2006-01-02"

// Date is a calendar day in ISO YYYY-MM-DD form, without a time component.
type Date string

// ParseDate validates s against DateLayout.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight of the day in UTC.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) After(other Date) bool {
	return d > other
}

func (d Date) String() string {
	return string(d)
}
