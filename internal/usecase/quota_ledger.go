package usecase

import (
	"context"
	"sync"
	"time"

	"swedavia-flights-service/internal/domain/repository"
	"swedavia-flights-service/pkg/logger"
	"swedavia-flights-service/pkg/metrics"
)

const (
	// CallLimit is the Swedavia quota: 10001 calls per rolling 30 days
	CallLimit         = 10001
	RollingWindowDays = 30
)

// QuotaStats summarizes API usage over the rolling window
type QuotaStats struct {
	TotalCalls30Days  int     `json:"total_calls_30_days"`
	RemainingCalls    int     `json:"remaining_calls"`
	PercentageUsed    float64 `json:"percentage_used"`
	Limit             int     `json:"limit"`
	RollingWindowDays int     `json:"rolling_window_days"`
	OldestCall        string  `json:"oldest_call,omitempty"`
}

// QuotaLedger tracks API calls with a 30-day rolling window. It is shared
// by every subscriber's poll task and is safe for concurrent use.
type QuotaLedger struct {
	repo    repository.CallLogRepository
	logger  logger.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	timestamps []int64

	now func() time.Time
}

// NewQuotaLedger creates the ledger and loads persisted call records.
// Storage failure is not fatal; the ledger starts empty.
func NewQuotaLedger(ctx context.Context, repo repository.CallLogRepository, log logger.Logger, m *metrics.Metrics) *QuotaLedger {
	ledger := &QuotaLedger{
		repo:    repo,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}

	timestamps, err := repo.Load(ctx)
	if err != nil {
		log.Error("Failed to load API call records, starting fresh", "error", err)
		return ledger
	}
	if len(timestamps) == 0 {
		log.Info("No previous API call data found, starting fresh")
		return ledger
	}

	ledger.timestamps = timestamps
	log.Info("Loaded API call records from storage", "count", len(timestamps))

	// Drop anything already outside the window and persist the pruned set
	pruned := ledger.pruneLocked()
	if pruned > 0 {
		if err := repo.Save(ctx, ledger.timestamps); err != nil {
			log.Error("Failed to persist pruned call records", "error", err)
		}
	}
	ledger.updateGauges()
	return ledger
}

func (l *QuotaLedger) cutoff() int64 {
	return l.now().UTC().Add(-RollingWindowDays * 24 * time.Hour).Unix()
}

// pruneLocked removes entries older than the rolling window. Caller holds
// the lock (or has exclusive access during construction).
func (l *QuotaLedger) pruneLocked() int {
	cutoff := l.cutoff()
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	removed := len(l.timestamps) - len(kept)
	l.timestamps = kept
	if removed > 0 {
		l.logger.Debug("Cleaned up old API call records",
			"removed", removed, "windowDays", RollingWindowDays)
	}
	return removed
}

// RecordCall appends the current timestamp, prunes the window and persists
// the full pruned set. Threshold notifications fire on every call past a
// threshold, not just on the crossing call.
func (l *QuotaLedger) RecordCall(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.timestamps = append(l.timestamps, l.now().UTC().Unix())
	l.pruneLocked()

	if err := l.repo.Save(ctx, l.timestamps); err != nil {
		l.logger.Error("Failed to persist API call records", "error", err)
	}

	count := len(l.timestamps)
	switch {
	case count >= CallLimit:
		l.logger.Error("API call limit reached",
			"calls", count, "windowDays", RollingWindowDays, "limit", CallLimit)
	case float64(count) >= CallLimit*0.9:
		l.logger.Warn("API call limit warning",
			"calls", count, "windowDays", RollingWindowDays, "limit", CallLimit)
	case float64(count) >= CallLimit*0.75:
		l.logger.Info("API call usage high",
			"calls", count, "windowDays", RollingWindowDays, "limit", CallLimit)
	}

	l.updateGauges()
}

// Count returns the calls within the rolling window. Pruning is evaluated
// against the current clock, so stale entries never inflate the count.
func (l *QuotaLedger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.cutoff()
	count := 0
	for _, ts := range l.timestamps {
		if ts > cutoff {
			count++
		}
	}
	return count
}

// Remaining returns how many calls are left before the limit
func (l *QuotaLedger) Remaining() int {
	remaining := CallLimit - l.Count()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PercentageUsed returns the used share of the quota in percent
func (l *QuotaLedger) PercentageUsed() float64 {
	return float64(l.Count()) / CallLimit * 100
}

// OldestCall returns the oldest call still inside the window
func (l *QuotaLedger) OldestCall() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.cutoff()
	var oldest int64
	for _, ts := range l.timestamps {
		if ts > cutoff && (oldest == 0 || ts < oldest) {
			oldest = ts
		}
	}
	if oldest == 0 {
		return time.Time{}, false
	}
	return time.Unix(oldest, 0).UTC(), true
}

// Stats returns comprehensive usage statistics
func (l *QuotaLedger) Stats() QuotaStats {
	stats := QuotaStats{
		TotalCalls30Days:  l.Count(),
		RemainingCalls:    l.Remaining(),
		PercentageUsed:    l.PercentageUsed(),
		Limit:             CallLimit,
		RollingWindowDays: RollingWindowDays,
	}
	if oldest, ok := l.OldestCall(); ok {
		stats.OldestCall = oldest.Format(time.RFC3339)
	}
	return stats
}

func (l *QuotaLedger) updateGauges() {
	if l.metrics == nil {
		return
	}
	count := len(l.timestamps)
	l.metrics.QuotaCallsUsed.Set(float64(count))
	l.metrics.QuotaUsedPercent.Set(float64(count) / CallLimit * 100)
}
