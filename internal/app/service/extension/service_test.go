package extension

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshcrate/attendance/internal/app/service/snapshot"
	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/internal/store/storetest"
	"github.com/freshcrate/attendance/pkg/types"
	"github.com/freshcrate/attendance/pkg/validity"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ExtensionLog{}, &models.AttendanceDailySnapshot{}))
	return db
}

func newTestService(t *testing.T, st store.Store) *Service {
	t.Helper()
	db := testDB(t)
	return &Service{
		st:         st,
		db:         db,
		snapshots:  snapshot.NewService(st, db, zap.NewNop().Sugar()),
		log:        zap.NewNop().Sugar(),
		locks:      newKeyedMutex(),
		batchLimit: 4,
		now:        func() time.Time { return testNow },
	}
}

func seedSubscription(mem *storetest.Memory, id string) *models.Subscription {
	sub := &models.Subscription{
		ID:                    id,
		CustomerID:            "cust-" + id,
		StartDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseValidityDays:      26,
		CurrentDeliveryStatus: types.DayStatusPending,
	}
	mem.Put(sub)
	return sub
}

func TestApplySkip_ExtendsExactlyOncePerDate(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	res, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusLeaveCompany)
	require.NoError(t, err)
	assert.True(t, res.Granted)
	assert.Equal(t, 1, res.Subscription.ExtensionDays)
	assert.Equal(t, types.DayStatusLeaveCompany, res.Ledger.DayStatus("2024-01-10"))

	// window moved from 2024-01-27 to 2024-01-28
	wantExpiry := time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, wantExpiry, validity.ExpiryDate(res.Subscription.StartDate, res.Subscription.BaseValidityDays, res.Subscription.ExtensionDays))

	// the ledger gained a trailing pending day
	assert.Equal(t, types.Date("2024-01-11"), res.Ledger.LastDate())
	assert.Equal(t, types.DayStatusPending, res.Ledger.DayStatus("2024-01-11"))

	// replaying the identical event changes nothing
	res2, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusLeaveCompany)
	require.NoError(t, err)
	assert.False(t, res2.Granted)
	assert.Equal(t, 1, res2.Subscription.ExtensionDays)
	assert.Equal(t, len(res.Ledger.Days), len(res2.Ledger.Days))
}

func TestApplySkip_MonotonicExpiry(t *testing.T) {
	mem := storetest.NewMemory()
	sub := seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	// applied out of calendar order on purpose
	for _, date := range []types.Date{"2024-01-12", "2024-01-10", "2024-01-11"} {
		_, err := svc.ApplySkip(context.Background(), "sub-1", date, types.DayStatusLeaveUser)
		require.NoError(t, err)
	}

	updated, err := mem.LoadSubscription(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ExtensionDays)
	assert.Equal(t,
		sub.StartDate.AddDate(0, 0, 26+3),
		validity.ExpiryDate(updated.StartDate, updated.BaseValidityDays, updated.ExtensionDays))
}

func TestApplySkip_PastDateRejected(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	_, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-09", types.DayStatusLeaveUser)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPastDateExtension))

	// nothing was written
	updated, err := mem.LoadSubscription(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ExtensionDays)
}

func TestApplySkip_CancelledDayRejected(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	ledger := &models.AttendanceLedger{ID: "led-1", SubscriptionID: "sub-1"}
	ledger.UpsertDay("2024-01-10", types.DayStatusCancelled)
	mem.PutLedger(ledger)
	svc := newTestService(t, mem)

	_, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusLeaveCompany)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCancelledDay))
}

func TestApplySkip_UnknownSubscription(t *testing.T) {
	svc := newTestService(t, storetest.NewMemory())

	_, err := svc.ApplySkip(context.Background(), "missing", "2024-01-10", types.DayStatusLeaveUser)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestApplySkip_RejectsNonLeaveKind(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	_, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusDelivered)
	assert.Error(t, err)
}

func TestApplySkip_CreatesLedgerLazily(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	res, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusLeaveUser)
	require.NoError(t, err)
	require.NotEmpty(t, res.Ledger.ID)

	stored, err := mem.LoadLedger(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Len(t, stored.Days, 2) // the skipped day plus the trailing pending day
}

func TestApplySkip_ConcurrentSameDate(t *testing.T) {
	mem := storetest.NewMemory()
	seedSubscription(mem, "sub-1")
	svc := newTestService(t, mem)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplySkip(context.Background(), "sub-1", "2024-01-10", types.DayStatusLeaveUser)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	updated, err := mem.LoadSubscription(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ExtensionDays)
	assert.Equal(t, []types.Date{"2024-01-10"}, []types.Date(updated.ExtendedDates))
}

func TestErrPastDateExtension_IsWrapFriendly(t *testing.T) {
	err := context.DeadlineExceeded
	assert.False(t, errors.Is(err, ErrPastDateExtension))

	wrapped := errors.Join(ErrPastDateExtension)
	assert.True(t, errors.Is(wrapped, ErrPastDateExtension))
}
