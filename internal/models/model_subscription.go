package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/freshcrate/attendance/pkg/types"
	"github.com/freshcrate/attendance/pkg/validity"
)

// Subscription is one customer's purchased delivery plan. The storefront
// creates it at checkout; this service only ever bumps the extension fields
// and the cached delivery status.
type Subscription struct {
	ID         string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CustomerID string `gorm:"column:customer_id;type:varchar(64);not null;index" json:"customer_id"`
	// StartDate is immutable once created.
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	// BaseValidityDays is fixed per plan. Zero means the row predates the
	// column and is read as the plan default.
	BaseValidityDays int `gorm:"column:base_validity_days;not null;default:26" json:"base_validity_days"`
	// ExtensionDays only grows, and only through the extension processor.
	ExtensionDays int `gorm:"column:extension_days;not null;default:0" json:"extension_days"`
	// ExtendedDates is the set of dates already credited with an extension,
	// the idempotency guard against replayed skip events.
	ExtendedDates datatypes.JSONSlice[types.Date] `gorm:"column:extended_dates;type:jsonb;default:'[]'" json:"extended_dates"`
	// CurrentDeliveryStatus is a display cache of the last resolved day.
	// The attendance ledger is authoritative.
	CurrentDeliveryStatus types.DayStatus `gorm:"column:current_delivery_status;type:varchar(32);default:'pending'" json:"current_delivery_status"`
	// Extra stores additional JSON data from the storefront (plan name, shipping, ...).
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Validity derives the remaining window as of now.
func (s *Subscription) Validity(now time.Time) types.Validity {
	return validity.Compute(s.StartDate, s.BaseValidityDays, s.ExtensionDays, now)
}

// ActiveOn reports whether date is inside the subscription's window.
func (s *Subscription) ActiveOn(date types.Date) bool {
	return validity.ActiveOn(s.StartDate, s.BaseValidityDays, s.ExtensionDays, date)
}

// HasExtensionFor reports whether date was already credited.
func (s *Subscription) HasExtensionFor(date types.Date) bool {
	for _, d := range s.ExtendedDates {
		if d == date {
			return true
		}
	}
	return false
}

// GrantExtension credits date with one extra validity day. Returns false
// without mutating anything when the date was already credited.
func (s *Subscription) GrantExtension(date types.Date) bool {
	if s.HasExtensionFor(date) {
		return false
	}
	s.ExtensionDays++
	s.ExtendedDates = append(s.ExtendedDates, date)
	return true
}
