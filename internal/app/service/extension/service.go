// Package extension applies skip events: it marks the skipped day in the
// ledger and lengthens the subscription's validity window, exactly once per
// calendar date, for one subscription or for all active ones.
package extension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/freshcrate/attendance/internal/app/service/snapshot"
	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/config"
	"github.com/freshcrate/attendance/pkg/logctx"
	"github.com/freshcrate/attendance/pkg/metrics"
	"github.com/freshcrate/attendance/pkg/tool"
	"github.com/freshcrate/attendance/pkg/types"
)

type Service struct {
	st        store.Store
	db        *gorm.DB
	snapshots *snapshot.Service
	log       *zap.SugaredLogger
	locks     *keyedMutex

	batchLimit int

	// now is replaceable in tests.
	now func() time.Time
}

func NewService(cfg *config.Config, st store.Store, db *gorm.DB, snapshots *snapshot.Service, log *zap.SugaredLogger) *Service {
	return &Service{
		st:         st,
		db:         db,
		snapshots:  snapshots,
		log:        log,
		locks:      newKeyedMutex(),
		batchLimit: cfg.Attendance.BatchConcurrency,
		now:        time.Now,
	}
}

// SkipResult is the outcome of one skip event.
type SkipResult struct {
	Subscription *models.Subscription     `json:"subscription"`
	Ledger       *models.AttendanceLedger `json:"ledger"`
	// Granted is false when the event was a replay and the window was left
	// unchanged.
	Granted bool `json:"granted"`
}

// ApplySkip records a skip for one subscription and one calendar date.
// Replaying the same event is a safe no-op: a day already marked as a leave
// returns early, and a date already credited never increments the window
// again.
func (s *Service) ApplySkip(ctx context.Context, subscriptionID string, date types.Date, kind types.SkipKind) (*SkipResult, error) {
	if !kind.IsLeave() {
		return nil, fmt.Errorf("invalid skip kind %q", kind)
	}
	if date.Before(types.DateOf(s.now())) {
		return nil, fmt.Errorf("day %s: %w", date, ErrPastDateExtension)
	}

	// Two concurrent skips for the same subscription must not both read the
	// pre-extension document.
	unlock := s.locks.Lock(subscriptionID)
	defer unlock()

	sub, err := s.st.LoadSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.st.LoadLedger(ctx, subscriptionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ledger = &models.AttendanceLedger{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: subscriptionID,
		}
	}

	switch current := ledger.DayStatus(date); {
	case current == types.DayStatusCancelled:
		return nil, fmt.Errorf("day %s: %w", date, ErrCancelledDay)
	case current.IsLeave():
		// Already marked: the extension was credited by the first event.
		metrics.SkipNoops.Inc()
		return &SkipResult{Subscription: sub, Ledger: ledger, Granted: false}, nil
	}

	ledger.UpsertDay(date, kind)
	if err := s.st.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}

	granted := false
	if !sub.HasExtensionFor(date) {
		before := *sub
		sub.GrantExtension(date)
		if err := s.st.SaveSubscription(ctx, sub); err != nil {
			return nil, err
		}
		granted = true
		metrics.ExtensionsGranted.WithLabelValues(string(kind)).Inc()
		s.writeExtensionLog(ctx, &before, sub, date, kind)
		logctx.FromCtx(ctx, s.log).Infow("extended subscription validity",
			"subscription_id", subscriptionID, "date", date, "kind", kind,
			"extension_days", sub.ExtensionDays)
	}

	if ledger.AppendNextPendingDay() {
		if err := s.st.SaveLedger(ctx, ledger); err != nil {
			return nil, err
		}
	}

	s.snapshots.RecordAsync(ctx, date)
	return &SkipResult{Subscription: sub, Ledger: ledger, Granted: granted}, nil
}

// writeExtensionLog persists the before/after audit trail asynchronously;
// errors are logged but not returned.
func (s *Service) writeExtensionLog(ctx context.Context, before, after *models.Subscription, date types.Date, kind types.SkipKind) {
	if s.db == nil {
		return
	}
	afterCopy := *after
	go func(ctx context.Context) {
		entry := &models.ExtensionLog{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: afterCopy.ID,
			Date:           date,
			Kind:           kind,
			Before:         datatypes.NewJSONType(before),
			After:          datatypes.NewJSONType(&afterCopy),
			Extra:          datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save extension log: %v", err)
		}
	}(context.WithoutCancel(ctx))
}
