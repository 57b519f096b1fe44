package models

import (
	"time"

	"github.com/freshcrate/attendance/pkg/types"
)

// AttendanceDailySnapshot is a per-date tally of delivery outcomes across
// all subscriptions active on that date. Recomputed and upserted after day
// mutations; the ledgers stay authoritative.
type AttendanceDailySnapshot struct {
	ID   string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Date types.Date `gorm:"column:date;type:varchar(10);not null;uniqueIndex" json:"date"`
	// Total is the number of subscriptions active on Date.
	Total        int       `gorm:"column:total;not null;default:0" json:"total"`
	Delivered    int       `gorm:"column:delivered;not null;default:0" json:"delivered"`
	NotDelivered int       `gorm:"column:not_delivered;not null;default:0" json:"not_delivered"`
	Leaves       int       `gorm:"column:leaves;not null;default:0" json:"leaves"`
	Pending      int       `gorm:"column:pending;not null;default:0" json:"pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AttendanceDailySnapshot) TableName() string {
	return "attendance_daily_snapshot"
}
