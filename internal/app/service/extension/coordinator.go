package extension

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/freshcrate/attendance/pkg/logctx"
	"github.com/freshcrate/attendance/pkg/metrics"
	"github.com/freshcrate/attendance/pkg/types"
)

// LeaveOutcome is one subscription's result inside a global leave batch.
type LeaveOutcome struct {
	SubscriptionID string `json:"subscription_id"`
	Granted        bool   `json:"granted"`
	Error          string `json:"error,omitempty"`
}

// GlobalLeaveResult reports the batch as partial success: failures never
// roll back or block the other subscriptions.
type GlobalLeaveResult struct {
	Date    types.Date `json:"date"`
	Total   int        `json:"total"`
	Granted int        `json:"granted"`
	// Skipped counts idempotent no-ops (already marked as leave).
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Failures []LeaveOutcome `json:"failures,omitempty"`
	Outcomes []LeaveOutcome `json:"outcomes"`
	// Unprocessed lists subscriptions never attempted because the batch was
	// cancelled mid-flight. Extensions already applied stay applied.
	Unprocessed []string `json:"unprocessed,omitempty"`
}

// ApplyGlobalLeave fans a company leave for date out to every subscription
// whose window includes date. Per-subscription operations run independently
// under bounded concurrency; there is no cross-subscription transaction.
func (s *Service) ApplyGlobalLeave(ctx context.Context, date types.Date) (*GlobalLeaveResult, error) {
	if date.Before(types.DateOf(s.now())) {
		return nil, fmt.Errorf("day %s: %w", date, ErrPastDateExtension)
	}

	subs, err := s.st.ListActiveSubscriptions(ctx, date)
	if err != nil {
		return nil, err
	}

	result := &GlobalLeaveResult{Date: date, Total: len(subs)}
	outcomes := make([]*LeaveOutcome, len(subs))

	var g errgroup.Group
	g.SetLimit(s.batchLimit)

	var mu sync.Mutex
	for i, sub := range subs {
		if ctx.Err() != nil {
			mu.Lock()
			result.Unprocessed = append(result.Unprocessed, sub.ID)
			mu.Unlock()
			continue
		}
		i, id := i, sub.ID
		g.Go(func() error {
			res, err := s.ApplySkip(ctx, id, date, types.DayStatusLeaveCompany)
			out := &LeaveOutcome{SubscriptionID: id}
			switch {
			case err != nil:
				out.Error = err.Error()
				metrics.BatchOutcomes.WithLabelValues("failed").Inc()
			case res.Granted:
				out.Granted = true
				metrics.BatchOutcomes.WithLabelValues("granted").Inc()
			default:
				metrics.BatchOutcomes.WithLabelValues("skipped").Inc()
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out == nil {
			continue
		}
		result.Outcomes = append(result.Outcomes, *out)
		switch {
		case out.Error != "":
			result.Failed++
			result.Failures = append(result.Failures, *out)
		case out.Granted:
			result.Granted++
		default:
			result.Skipped++
		}
	}

	logctx.FromCtx(ctx, s.log).Infow("applied global leave",
		"date", date, "total", result.Total, "granted", result.Granted,
		"skipped", result.Skipped, "failed", result.Failed,
		"unprocessed", len(result.Unprocessed))
	return result, nil
}
