package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/internal/store/storetest"
	"github.com/freshcrate/attendance/pkg/types"
)

func newTestService(t *testing.T, mem *storetest.Memory) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AttendanceDailySnapshot{}))
	return NewService(mem, db, zap.NewNop().Sugar())
}

func seed(mem *storetest.Memory, id string, days map[types.Date]types.DayStatus) {
	mem.Put(&models.Subscription{
		ID:               id,
		CustomerID:       "cust-" + id,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseValidityDays: 26,
	})
	if len(days) == 0 {
		return
	}
	ledger := &models.AttendanceLedger{ID: "led-" + id, SubscriptionID: id}
	for date, status := range days {
		ledger.UpsertDay(date, status)
	}
	mem.PutLedger(ledger)
}

func TestRecord(t *testing.T) {
	mem := storetest.NewMemory()
	seed(mem, "sub-1", map[types.Date]types.DayStatus{"2024-01-10": types.DayStatusDelivered})
	seed(mem, "sub-2", map[types.Date]types.DayStatus{"2024-01-10": types.DayStatusNotDelivered})
	seed(mem, "sub-3", map[types.Date]types.DayStatus{"2024-01-10": types.DayStatusLeaveCompany})
	seed(mem, "sub-4", nil) // no ledger yet, counts as pending
	svc := newTestService(t, mem)

	snap, err := svc.Record(context.Background(), "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, types.Date("2024-01-10"), snap.Date)
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 1, snap.Delivered)
	assert.Equal(t, 1, snap.NotDelivered)
	assert.Equal(t, 1, snap.Leaves)
	assert.Equal(t, 1, snap.Pending)
}

func TestRecord_UpsertsOnReplay(t *testing.T) {
	mem := storetest.NewMemory()
	seed(mem, "sub-1", nil)
	svc := newTestService(t, mem)

	_, err := svc.Record(context.Background(), "2024-01-10")
	require.NoError(t, err)

	// the day gets resolved, then the snapshot is recomputed
	ledger := &models.AttendanceLedger{ID: "led-1", SubscriptionID: "sub-1"}
	ledger.UpsertDay("2024-01-10", types.DayStatusDelivered)
	mem.PutLedger(ledger)

	_, err = svc.Record(context.Background(), "2024-01-10")
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&models.AttendanceDailySnapshot{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := svc.Get(context.Background(), "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Delivered)
	assert.Equal(t, 0, got.Pending)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(t, storetest.NewMemory())

	_, err := svc.Get(context.Background(), "2024-01-10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
