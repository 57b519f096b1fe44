package types

import "fmt"

// DayStatus is the outcome recorded for a single delivery day.
type DayStatus string

const (
	// DayStatusPending is the default for today and future days.
	DayStatusPending   DayStatus = "pending"
	DayStatusDelivered DayStatus = "delivered"
	// DayStatusNotDelivered means the customer was unavailable; the business
	// still counts the day as fulfilled.
	DayStatusNotDelivered DayStatus = "not_delivered"
	// DayStatusLeaveUser is a customer-initiated skip.
	DayStatusLeaveUser DayStatus = "leave_user"
	// DayStatusLeaveCompany is an operator-initiated or global skip.
	DayStatusLeaveCompany DayStatus = "leave_company"
	// DayStatusCancelled is terminal; a cancelled day is never extended.
	DayStatusCancelled DayStatus = "cancelled"
)

// ParseDayStatus rejects anything outside the closed status set. The
// upstream store holds loosely-typed documents, so validation happens here
// at the boundary instead of defaulting silently.
func ParseDayStatus(s string) (DayStatus, error) {
	switch DayStatus(s) {
	case DayStatusPending, DayStatusDelivered, DayStatusNotDelivered,
		DayStatusLeaveUser, DayStatusLeaveCompany, DayStatusCancelled:
		return DayStatus(s), nil
	}
	return "", fmt.Errorf("unknown day status %q", s)
}

// IsLeave reports whether the status is one of the two skip kinds.
func (s DayStatus) IsLeave() bool {
	return s == DayStatusLeaveUser || s == DayStatusLeaveCompany
}

// Fulfilled reports whether the day counts as served for business purposes.
func (s DayStatus) Fulfilled() bool {
	return s == DayStatusDelivered || s == DayStatusNotDelivered
}

// SkipKind is the subset of DayStatus valid for ApplySkip.
type SkipKind = DayStatus

// ParseSkipKind accepts leave_user or leave_company only.
func ParseSkipKind(s string) (SkipKind, error) {
	k := DayStatus(s)
	if !k.IsLeave() {
		return "", fmt.Errorf("invalid skip kind %q", s)
	}
	return k, nil
}
