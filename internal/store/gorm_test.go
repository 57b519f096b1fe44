package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/pkg/types"
)

func newTestStore(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}, &models.AttendanceLedger{}))
	return NewGorm(db)
}

func newSubscription(id string, start time.Time) *models.Subscription {
	return &models.Subscription{
		ID:                    id,
		CustomerID:            "cust-" + id,
		StartDate:             start,
		BaseValidityDays:      26,
		CurrentDeliveryStatus: types.DayStatusPending,
	}
}

func TestGorm_SubscriptionRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sub := newSubscription("sub-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sub.GrantExtension("2024-01-10")
	require.NoError(t, st.SaveSubscription(ctx, sub))

	got, err := st.LoadSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-sub-1", got.CustomerID)
	assert.Equal(t, 1, got.ExtensionDays)
	assert.True(t, got.HasExtensionFor("2024-01-10"))
	assert.Equal(t, types.DayStatusPending, got.CurrentDeliveryStatus)
}

func TestGorm_LoadSubscriptionNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.LoadSubscription(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGorm_NormalizesLooseRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// rows written by the storefront before the defaults existed
	require.NoError(t, st.db.Exec(
		`INSERT INTO subscription (id, customer_id, start_date, base_validity_days, extension_days, extended_dates, current_delivery_status, extra)
		 VALUES (?, ?, ?, 0, 0, '[]', '', '{}')`,
		"sub-old", "cust-old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Error)

	got, err := st.LoadSubscription(ctx, "sub-old")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultBaseValidityDays, got.BaseValidityDays)
	assert.Equal(t, types.DayStatusPending, got.CurrentDeliveryStatus)
}

func TestGorm_LedgerRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ledger := &models.AttendanceLedger{ID: "led-1", SubscriptionID: "sub-1"}
	ledger.UpsertDay("2024-01-10", types.DayStatusLeaveCompany)
	ledger.UpsertDay("2024-01-09", types.DayStatusDelivered)
	require.NoError(t, st.SaveLedger(ctx, ledger))

	got, err := st.LoadLedger(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, got.Days, 2)
	assert.Equal(t, types.Date("2024-01-09"), got.Days[0].Date)
	assert.Equal(t, types.DayStatusLeaveCompany, got.DayStatus("2024-01-10"))

	// whole-document save replaces the day list
	got.UpsertDay("2024-01-10", types.DayStatusCancelled)
	require.NoError(t, st.SaveLedger(ctx, got))
	reloaded, err := st.LoadLedger(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, types.DayStatusCancelled, reloaded.DayStatus("2024-01-10"))
}

func TestGorm_LoadLedgerNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.LoadLedger(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGorm_ListActiveSubscriptions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	active := newSubscription("sub-active", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	future := newSubscription("sub-future", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	expired := newSubscription("sub-expired", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	// an extension can pull an otherwise expired window over the date
	extended := newSubscription("sub-extended", time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC))
	extended.GrantExtension("2024-01-02")

	for _, sub := range []*models.Subscription{active, future, expired, extended} {
		require.NoError(t, st.SaveSubscription(ctx, sub))
	}

	subs, err := st.ListActiveSubscriptions(ctx, "2024-01-10")
	require.NoError(t, err)
	ids := lo.Map(subs, func(s *models.Subscription, _ int) string { return s.ID })
	assert.ElementsMatch(t, []string{"sub-active", "sub-extended"}, ids)
}

func TestGorm_ListSubscriptions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSubscription(ctx, newSubscription("sub-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, st.SaveSubscription(ctx, newSubscription("sub-2", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))))

	subs, err := st.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
