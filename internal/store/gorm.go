package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/pkg/types"
)

// Gorm implements Store on the relational document store. Ledger days and
// extended-date sets live in JSONB columns and are saved whole, matching
// the per-document atomicity contract.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// normalizeSubscription repairs loose documents written by the storefront:
// rows created before the validity column default get the plan default, and
// an empty cached status reads as pending.
func normalizeSubscription(sub *models.Subscription) *models.Subscription {
	if sub.BaseValidityDays <= 0 {
		sub.BaseValidityDays = types.DefaultBaseValidityDays
	}
	if sub.CurrentDeliveryStatus == "" {
		sub.CurrentDeliveryStatus = types.DayStatusPending
	}
	return sub
}

func (g *Gorm) LoadSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return normalizeSubscription(&sub), nil
}

func (g *Gorm) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := g.db.WithContext(ctx).Save(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (g *Gorm) LoadLedger(ctx context.Context, subscriptionID string) (*models.AttendanceLedger, error) {
	var ledger models.AttendanceLedger
	if err := g.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger for subscription %s: %w", subscriptionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return &ledger, nil
}

func (g *Gorm) SaveLedger(ctx context.Context, ledger *models.AttendanceLedger) error {
	if err := g.db.WithContext(ctx).Save(ledger).Error; err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// ListActiveSubscriptions narrows by start date in SQL and applies the
// derived expiry bound in memory; expiry depends on the extension counter,
// which the database cannot compute.
func (g *Gorm) ListActiveSubscriptions(ctx context.Context, date types.Date) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	dayEnd := date.Time().AddDate(0, 0, 1)
	if err := g.db.WithContext(ctx).Where("start_date < ?", dayEnd).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	subs = lo.Map(subs, func(s *models.Subscription, _ int) *models.Subscription {
		return normalizeSubscription(s)
	})
	return lo.Filter(subs, func(s *models.Subscription, _ int) bool {
		return s.ActiveOn(date)
	}), nil
}

func (g *Gorm) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return lo.Map(subs, func(s *models.Subscription, _ int) *models.Subscription {
		return normalizeSubscription(s)
	}), nil
}

var Module = fx.Options(
	fx.Provide(
		NewGorm,
		func(g *Gorm) Store { return g },
	),
)
