// Package validity projects a subscription snapshot onto its remaining
// window. Pure and side-effect free; safe to call concurrently.
package validity

import (
	"time"

	"github.com/freshcrate/attendance/pkg/calendar"
	"github.com/freshcrate/attendance/pkg/types"
)

// ExpiryDate is the inclusive end of the active window:
// startDate + baseValidityDays + extensionDays.
func ExpiryDate(startDate time.Time, baseValidityDays, extensionDays int) time.Time {
	if baseValidityDays <= 0 {
		baseValidityDays = types.DefaultBaseValidityDays
	}
	return startDate.AddDate(0, 0, baseValidityDays+extensionDays)
}

// Compute derives {expiryDate, daysLeft, status} as of now.
func Compute(startDate time.Time, baseValidityDays, extensionDays int, now time.Time) types.Validity {
	expiry := ExpiryDate(startDate, baseValidityDays, extensionDays)
	daysLeft := calendar.DaysBetweenCeil(now, expiry)

	status := types.SubscriptionStatusActive
	switch {
	case daysLeft == 0:
		status = types.SubscriptionStatusExpired
	case daysLeft <= types.ExpiringSoonDays:
		status = types.SubscriptionStatusExpiringSoon
	}

	return types.Validity{
		ExpiryDate: expiry,
		DaysLeft:   daysLeft,
		Status:     status,
	}
}

// ActiveOn reports whether date falls inside the subscription's window,
// start and expiry inclusive.
func ActiveOn(startDate time.Time, baseValidityDays, extensionDays int, date types.Date) bool {
	if types.DateOf(startDate).After(date) {
		return false
	}
	expiry := types.DateOf(ExpiryDate(startDate, baseValidityDays, extensionDays))
	return !expiry.Before(date)
}
