// Package store is the boundary to the order system's document store. The
// engine only needs single-document reads and whole-document writes; no
// multi-document transaction primitive is assumed.
package store

import (
	"context"
	"errors"

	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/pkg/types"
)

// ErrNotFound is returned for unknown subscription or ledger ids.
var ErrNotFound = errors.New("record not found")

// Store is the read/write surface the engine consumes. Each call is
// atomic per document only.
type Store interface {
	LoadSubscription(ctx context.Context, id string) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, sub *models.Subscription) error
	// LoadLedger looks up the ledger by owning subscription id.
	LoadLedger(ctx context.Context, subscriptionID string) (*models.AttendanceLedger, error)
	SaveLedger(ctx context.Context, ledger *models.AttendanceLedger) error
	// ListActiveSubscriptions returns subscriptions whose window includes date.
	ListActiveSubscriptions(ctx context.Context, date types.Date) ([]*models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*models.Subscription, error)
}
