// Package attendance owns the per-subscription delivery ledger: lazy
// creation, day resolution, and the merged daily sheet the admin console
// renders.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/freshcrate/attendance/internal/app/service/snapshot"
	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/logctx"
	"github.com/freshcrate/attendance/pkg/tool"
	"github.com/freshcrate/attendance/pkg/types"
)

// ErrInvalidTransition is returned when a resolved past day would be moved
// back to pending.
var ErrInvalidTransition = errors.New("cannot reset a past delivery day to pending")

type Service struct {
	st        store.Store
	snapshots *snapshot.Service
	log       *zap.SugaredLogger

	// now is replaceable in tests.
	now func() time.Time
}

func NewService(st store.Store, snapshots *snapshot.Service, log *zap.SugaredLogger) *Service {
	return &Service{st: st, snapshots: snapshots, log: log, now: time.Now}
}

// GetOrCreate returns the subscription's ledger, creating an empty one on
// first use. The storefront does not materialize ledgers at checkout; the
// first admin action that resolves a day does.
func (s *Service) GetOrCreate(ctx context.Context, subscriptionID string) (*models.AttendanceLedger, error) {
	ledger, err := s.st.LoadLedger(ctx, subscriptionID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Unknown subscription ids must not create orphan ledgers.
	if _, err := s.st.LoadSubscription(ctx, subscriptionID); err != nil {
		return nil, err
	}

	ledger = &models.AttendanceLedger{
		ID:             tool.GenerateUUIDV7(),
		SubscriptionID: subscriptionID,
	}
	if err := s.st.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("created attendance ledger", "subscription_id", subscriptionID)
	return ledger, nil
}

// ResolveDay records the outcome for a single day without granting an
// extension. Used for delivered, not_delivered, cancelled, and pending
// corrections; leave kinds go through the extension processor instead.
func (s *Service) ResolveDay(ctx context.Context, subscriptionID string, date types.Date, status types.DayStatus) (*models.AttendanceLedger, error) {
	if status.IsLeave() {
		return nil, fmt.Errorf("status %s requires a skip event, not a day resolution", status)
	}
	if status == types.DayStatusPending && date.Before(types.DateOf(s.now())) {
		return nil, fmt.Errorf("day %s: %w", date, ErrInvalidTransition)
	}

	ledger, err := s.GetOrCreate(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	ledger.UpsertDay(date, status)
	if err := s.st.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}

	if err := s.refreshStatusCache(ctx, subscriptionID, status); err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("resolved delivery day",
		"subscription_id", subscriptionID, "date", date, "status", status)
	s.snapshots.RecordAsync(ctx, date)
	return ledger, nil
}

// refreshStatusCache mirrors the last outcome onto the subscription row for
// list views. A customer who was unavailable still counts as served, so
// not_delivered is cached as delivered.
func (s *Service) refreshStatusCache(ctx context.Context, subscriptionID string, status types.DayStatus) error {
	sub, err := s.st.LoadSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	cached := status
	if status == types.DayStatusNotDelivered {
		cached = types.DayStatusDelivered
	}
	sub.CurrentDeliveryStatus = cached
	return s.st.SaveSubscription(ctx, sub)
}

// History returns the full ledger for a subscription.
func (s *Service) History(ctx context.Context, subscriptionID string) (*models.AttendanceLedger, error) {
	return s.st.LoadLedger(ctx, subscriptionID)
}

// SheetRow is one subscription's line on the daily attendance sheet.
type SheetRow struct {
	SubscriptionID string          `json:"subscription_id"`
	CustomerID     string          `json:"customer_id"`
	Status         types.DayStatus `json:"status"`
	DaysLeft       int             `json:"days_left"`
}

// DailySheet is the merged view for one date.
type DailySheet struct {
	Date        types.Date `json:"date"`
	Total       int        `json:"total"`
	Delivered   int        `json:"delivered"`
	Outstanding int        `json:"outstanding"`
	Rows        []SheetRow `json:"rows"`
}

// Sheet builds the attendance sheet for date: every subscription active on
// it, with the day's recorded status and remaining days. Subscriptions
// without a ledger entry for the date show as pending.
func (s *Service) Sheet(ctx context.Context, date types.Date) (*DailySheet, error) {
	subs, err := s.st.ListActiveSubscriptions(ctx, date)
	if err != nil {
		return nil, err
	}

	sheet := &DailySheet{Date: date, Rows: make([]SheetRow, 0, len(subs))}
	now := s.now()
	for _, sub := range subs {
		status := types.DayStatusPending
		ledger, err := s.st.LoadLedger(ctx, sub.ID)
		if err == nil {
			status = ledger.DayStatus(date)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		sheet.Rows = append(sheet.Rows, SheetRow{
			SubscriptionID: sub.ID,
			CustomerID:     sub.CustomerID,
			Status:         status,
			DaysLeft:       sub.Validity(now).DaysLeft,
		})
		switch {
		case status.Fulfilled():
			sheet.Delivered++
		case status == types.DayStatusPending:
			sheet.Outstanding++
		}
	}
	sheet.Total = len(sheet.Rows)
	return sheet, nil
}
