package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcrate/attendance/pkg/types"
)

func TestLedgerUpsertDayKeepsSortedOrder(t *testing.T) {
	l := &AttendanceLedger{SubscriptionID: "sub-1"}

	l.UpsertDay("2024-01-10", types.DayStatusDelivered)
	l.UpsertDay("2024-01-08", types.DayStatusDelivered)
	l.UpsertDay("2024-01-09", types.DayStatusNotDelivered)

	require.Len(t, l.Days, 3)
	assert.Equal(t, types.Date("2024-01-08"), l.Days[0].Date)
	assert.Equal(t, types.Date("2024-01-09"), l.Days[1].Date)
	assert.Equal(t, types.Date("2024-01-10"), l.Days[2].Date)

	// replacing an existing day does not grow the document
	l.UpsertDay("2024-01-09", types.DayStatusDelivered)
	require.Len(t, l.Days, 3)
	assert.Equal(t, types.DayStatusDelivered, l.DayStatus("2024-01-09"))
}

func TestLedgerDayStatusDefaultsToPending(t *testing.T) {
	l := &AttendanceLedger{}
	assert.Equal(t, types.DayStatusPending, l.DayStatus("2024-01-10"))
	assert.Nil(t, l.FindDay("2024-01-10"))
}

func TestLedgerAppendNextPendingDay(t *testing.T) {
	l := &AttendanceLedger{}
	l.UpsertDay("2024-01-10", types.DayStatusLeaveUser)

	require.True(t, l.AppendNextPendingDay())
	require.Len(t, l.Days, 2)
	assert.Equal(t, types.Date("2024-01-11"), l.Days[1].Date)
	assert.Equal(t, types.DayStatusPending, l.Days[1].Status)

	// retried append is a no-op
	require.False(t, l.AppendNextPendingDay())
	require.Len(t, l.Days, 2)
}

func TestLedgerAppendNextPendingDaySkipsRestDay(t *testing.T) {
	l := &AttendanceLedger{}
	// 2024-01-13 is a Saturday; the next eligible day is Monday
	l.UpsertDay("2024-01-13", types.DayStatusLeaveCompany)

	require.True(t, l.AppendNextPendingDay())
	assert.Equal(t, types.Date("2024-01-15"), l.LastDate())
	assert.Equal(t, time.Monday, l.LastDate().Weekday())
}

func TestLedgerAppendNextPendingDayEmptyLedger(t *testing.T) {
	l := &AttendanceLedger{}
	assert.False(t, l.AppendNextPendingDay())
	assert.Empty(t, l.Days)
}

func TestSubscriptionGrantExtension(t *testing.T) {
	sub := &Subscription{
		ID:               "sub-1",
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseValidityDays: 26,
	}

	require.True(t, sub.GrantExtension("2024-01-10"))
	assert.Equal(t, 1, sub.ExtensionDays)
	assert.True(t, sub.HasExtensionFor("2024-01-10"))

	// second grant for the same date is refused
	require.False(t, sub.GrantExtension("2024-01-10"))
	assert.Equal(t, 1, sub.ExtensionDays)

	// a different date is a separate credit
	require.True(t, sub.GrantExtension("2024-01-11"))
	assert.Equal(t, 2, sub.ExtensionDays)
}

func TestSubscriptionActiveOn(t *testing.T) {
	sub := &Subscription{
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseValidityDays: 26,
	}
	assert.True(t, sub.ActiveOn("2024-01-15"))
	assert.False(t, sub.ActiveOn("2024-02-15"))

	sub.GrantExtension("2024-01-10")
	assert.True(t, sub.ActiveOn("2024-01-28"))
}
