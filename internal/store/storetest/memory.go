// Package storetest provides an in-memory Store for service tests. Loads
// and saves copy documents, matching the whole-document semantics of the
// real backing store.
package storetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/types"
)

type Memory struct {
	mu            sync.Mutex
	subscriptions map[string]*models.Subscription
	ledgers       map[string]*models.AttendanceLedger

	// SaveSubscriptionErr and SaveLedgerErr, when set, fail the next
	// matching save. Used to exercise partial-failure paths.
	SaveSubscriptionErr error
	SaveLedgerErr       error

	// SubscriptionSaves counts successful subscription writes.
	SubscriptionSaves int
}

func NewMemory() *Memory {
	return &Memory{
		subscriptions: make(map[string]*models.Subscription),
		ledgers:       make(map[string]*models.AttendanceLedger),
	}
}

func copySubscription(sub *models.Subscription) *models.Subscription {
	cp := *sub
	cp.ExtendedDates = slices.Clone(sub.ExtendedDates)
	return &cp
}

func copyLedger(l *models.AttendanceLedger) *models.AttendanceLedger {
	cp := *l
	cp.Days = slices.Clone(l.Days)
	return &cp
}

// Put seeds a subscription.
func (m *Memory) Put(sub *models.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[sub.ID] = copySubscription(sub)
}

// PutLedger seeds a ledger.
func (m *Memory) PutLedger(l *models.AttendanceLedger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[l.SubscriptionID] = copyLedger(l)
}

func (m *Memory) LoadSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("subscription %s: %w", id, store.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (m *Memory) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveSubscriptionErr != nil {
		return m.SaveSubscriptionErr
	}
	m.subscriptions[sub.ID] = copySubscription(sub)
	m.SubscriptionSaves++
	return nil
}

func (m *Memory) LoadLedger(ctx context.Context, subscriptionID string) (*models.AttendanceLedger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.ledgers[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("ledger for subscription %s: %w", subscriptionID, store.ErrNotFound)
	}
	return copyLedger(l), nil
}

func (m *Memory) SaveLedger(ctx context.Context, l *models.AttendanceLedger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveLedgerErr != nil {
		return m.SaveLedgerErr
	}
	m.ledgers[l.SubscriptionID] = copyLedger(l)
	return nil
}

func (m *Memory) ListActiveSubscriptions(ctx context.Context, date types.Date) ([]*models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Subscription
	for _, sub := range m.subscriptions {
		if sub.ActiveOn(date) {
			out = append(out, copySubscription(sub))
		}
	}
	slices.SortFunc(out, func(a, b *models.Subscription) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		out = append(out, copySubscription(sub))
	}
	return out, nil
}

var _ store.Store = (*Memory)(nil)
