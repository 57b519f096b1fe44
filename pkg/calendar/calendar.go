// Package calendar holds the date arithmetic shared by the validity
// calculator and the extension processor. Everything here is pure.
package calendar

import (
	"time"

	"github.com/freshcrate/attendance/pkg/types"
)

// RestDay is the weekly day with no deliveries. Ledgers never materialize
// an entry for it.
const RestDay = time.Sunday

// IsRestDay reports whether d falls on the weekly off-day.
func IsRestDay(d types.Date) bool {
	return d.Weekday() == RestDay
}

// NextEligibleDay returns the first deliverable day strictly after d.
func NextEligibleDay(d types.Date) types.Date {
	next := d.AddDays(1)
	for IsRestDay(next) {
		next = next.AddDays(1)
	}
	return next
}

// DaysBetweenCeil returns ceil(b-a) in whole days, clamped to zero. Partial
// days count as one, so an expiry later today still reports one day left.
func DaysBetweenCeil(a, b time.Time) int {
	diff := b.Sub(a)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
