package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/freshcrate/attendance/pkg/calendar"
	"github.com/freshcrate/attendance/pkg/types"
)

// DayRecord is one calendar day inside a ledger document.
type DayRecord struct {
	Date   types.Date      `json:"date"`
	Status types.DayStatus `json:"status"`
}

// AttendanceLedger is the per-subscription record of daily delivery
// outcomes. Days is an ordered JSONB document saved whole on every
// mutation; rest days are never materialized as entries.
type AttendanceLedger struct {
	ID             string                            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string                            `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex" json:"subscription_id"`
	Days           datatypes.JSONSlice[DayRecord]    `gorm:"column:days;type:jsonb;default:'[]'" json:"days"`
	CreatedAt      time.Time                         `json:"created_at"`
	UpdatedAt      time.Time                         `json:"updated_at"`
}

func (AttendanceLedger) TableName() string {
	return "attendance_ledger"
}

// DayStatus returns the recorded status for date, or pending when the date
// has no entry yet.
func (l *AttendanceLedger) DayStatus(date types.Date) types.DayStatus {
	if rec := l.FindDay(date); rec != nil {
		return rec.Status
	}
	return types.DayStatusPending
}

// FindDay returns the entry for date, or nil.
func (l *AttendanceLedger) FindDay(date types.Date) *DayRecord {
	for i := range l.Days {
		if l.Days[i].Date == date {
			return &l.Days[i]
		}
	}
	return nil
}

// LastDate returns the trailing ledger date, or the zero Date for an empty
// ledger.
func (l *AttendanceLedger) LastDate() types.Date {
	if len(l.Days) == 0 {
		return ""
	}
	return l.Days[len(l.Days)-1].Date
}

// UpsertDay replaces the status for date, inserting a new entry in sorted
// position when none exists. Last write wins; callers enforce transition
// rules before mutating.
func (l *AttendanceLedger) UpsertDay(date types.Date, status types.DayStatus) {
	if rec := l.FindDay(date); rec != nil {
		rec.Status = status
		return
	}
	l.Days = append(l.Days, DayRecord{Date: date, Status: status})
	sort.Slice(l.Days, func(i, j int) bool {
		return l.Days[i].Date.Before(l.Days[j].Date)
	})
}

// AppendNextPendingDay appends a pending entry for the next eligible day
// after the trailing date. A retried operation that already appended the
// day is a no-op; reports whether an entry was added.
func (l *AttendanceLedger) AppendNextPendingDay() bool {
	last := l.LastDate()
	if last.IsZero() {
		return false
	}
	next := calendar.NextEligibleDay(last)
	if l.FindDay(next) != nil {
		return false
	}
	l.Days = append(l.Days, DayRecord{Date: next, Status: types.DayStatusPending})
	return true
}
