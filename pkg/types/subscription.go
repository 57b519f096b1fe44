package types

import "time"

// DefaultBaseValidityDays is the plan length in days. Every plan currently
// sold uses the same window.
const DefaultBaseValidityDays = 26

// ExpiringSoonDays is the days-left threshold at or below which a
// subscription is reported as expiring_soon.
const ExpiringSoonDays = 7

type SubscriptionStatus string

const (
	SubscriptionStatusActive       SubscriptionStatus = "active"
	SubscriptionStatusExpiringSoon SubscriptionStatus = "expiring_soon"
	SubscriptionStatusExpired      SubscriptionStatus = "expired"
)

// Validity is the derived view of a subscription's remaining window. It is
// never stored; recompute it from the subscription snapshot whenever needed.
type Validity struct {
	ExpiryDate time.Time          `json:"expiry_date"`
	DaysLeft   int                `json:"days_left"`
	Status     SubscriptionStatus `json:"status"`
}
