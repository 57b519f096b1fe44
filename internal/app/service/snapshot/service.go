// Package snapshot maintains per-date attendance tallies. The tallies feed
// the admin dashboard; the ledgers stay authoritative.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/logctx"
	"github.com/freshcrate/attendance/pkg/tool"
	"github.com/freshcrate/attendance/pkg/types"
)

type Service struct {
	st  store.Store
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(st store.Store, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{st: st, db: db, log: log}
}

// Record recomputes the tallies for date across every subscription active
// on it and upserts the snapshot row.
func (s *Service) Record(ctx context.Context, date types.Date) (*models.AttendanceDailySnapshot, error) {
	subs, err := s.st.ListActiveSubscriptions(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}

	statuses := make([]types.DayStatus, 0, len(subs))
	for _, sub := range subs {
		ledger, err := s.st.LoadLedger(ctx, sub.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				statuses = append(statuses, types.DayStatusPending)
				continue
			}
			return nil, err
		}
		statuses = append(statuses, ledger.DayStatus(date))
	}

	counts := lo.CountValues(statuses)
	snap := &models.AttendanceDailySnapshot{
		ID:           tool.GenerateUUIDV7(),
		Date:         date,
		Total:        len(statuses),
		Delivered:    counts[types.DayStatusDelivered],
		NotDelivered: counts[types.DayStatusNotDelivered],
		Leaves:       counts[types.DayStatusLeaveUser] + counts[types.DayStatusLeaveCompany],
		Pending:      counts[types.DayStatusPending],
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total", "delivered", "not_delivered", "leaves", "pending", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return snap, nil
}

// RecordAsync refreshes the snapshot for date without blocking the calling
// mutation; errors are logged but not returned.
func (s *Service) RecordAsync(ctx context.Context, date types.Date) {
	go func(ctx context.Context) {
		if _, err := s.Record(ctx, date); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to record attendance snapshot for %s: %v", date, err)
		}
	}(context.WithoutCancel(ctx))
}

// Get returns the stored snapshot for date.
func (s *Service) Get(ctx context.Context, date types.Date) (*models.AttendanceDailySnapshot, error) {
	var snap models.AttendanceDailySnapshot
	if err := s.db.WithContext(ctx).Where("date = ?", date).First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("snapshot for %s: %w", date, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}
