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
	// BoostInterval is the accelerated polling interval while boosted
	BoostInterval = 120 * time.Second

	// DefaultBoostDuration applies when an activation gives no duration
	DefaultBoostDuration = 4 * time.Hour

	// boostCallsPerUpdate is the average call estimate per boosted update
	boostCallsPerUpdate = 3
)

// BoostResult describes an activated boost window
type BoostResult struct {
	SubscriberID   string    `json:"subscriber_id"`
	BoostEnd       time.Time `json:"boost_end"`
	DurationHours  int       `json:"duration_hours"`
	IntervalSecs   int       `json:"interval_seconds"`
	EstimatedCalls int       `json:"estimated_calls"`
}

// BoostInfo describes one currently active boost window
type BoostInfo struct {
	Active           bool      `json:"active"`
	BoostEnd         time.Time `json:"boost_end"`
	RemainingSeconds int       `json:"remaining_seconds"`
	RemainingMinutes int       `json:"remaining_minutes"`
	IntervalSecs     int       `json:"interval_seconds"`
}

// BoostManager tracks per-subscriber temporary polling overrides. Windows
// survive restarts; at most one window exists per subscriber. Expiry checks
// double as cleanup so an expired window is never reported active.
type BoostManager struct {
	repo    repository.BoostRepository
	logger  logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	windows map[string]time.Time

	now func() time.Time
}

// NewBoostManager creates the manager and restores persisted windows.
// Storage failure is not fatal; the manager starts empty. Windows that
// expired while the process was down are not restored.
func NewBoostManager(ctx context.Context, repo repository.BoostRepository, log logger.Logger, m *metrics.Metrics) *BoostManager {
	manager := &BoostManager{
		repo:    repo,
		logger:  log,
		metrics: m,
		windows: make(map[string]time.Time),
		now:     time.Now,
	}

	stored, err := repo.Load(ctx)
	if err != nil {
		log.Error("Failed to load boost windows, starting fresh", "error", err)
		return manager
	}

	now := manager.now().UTC()
	for id, expiry := range stored {
		if expiry.After(now) {
			manager.windows[id] = expiry
			log.Info("Restored active boost", "subscriber", id, "until", expiry.Format(time.RFC3339))
		}
	}
	return manager
}

func (b *BoostManager) save(ctx context.Context) {
	snapshot := make(map[string]time.Time, len(b.windows))
	for id, expiry := range b.windows {
		snapshot[id] = expiry
	}
	if err := b.repo.Save(ctx, snapshot); err != nil {
		b.logger.Error("Failed to persist boost windows", "error", err)
	}
}

// Activate starts (or restarts) a boost window for a subscriber and
// returns the expiry plus the expected extra call volume
func (b *BoostManager) Activate(ctx context.Context, subscriberID string, durationHours int) BoostResult {
	duration := DefaultBoostDuration
	if durationHours > 0 {
		duration = time.Duration(durationHours) * time.Hour
	}

	b.mu.Lock()
	expiry := b.now().UTC().Add(duration)
	b.windows[subscriberID] = expiry
	b.save(ctx)
	b.mu.Unlock()

	updates := int(duration.Seconds()) / int(BoostInterval.Seconds())
	estimated := updates * boostCallsPerUpdate

	b.logger.Warn("Boost mode activated",
		"subscriber", subscriberID,
		"durationHours", int(duration.Hours()),
		"intervalSeconds", int(BoostInterval.Seconds()),
		"estimatedCalls", estimated,
		"boostEnd", expiry.Format(time.RFC3339))

	if b.metrics != nil {
		b.metrics.BoostActive.WithLabelValues(subscriberID).Set(1)
	}

	return BoostResult{
		SubscriberID:   subscriberID,
		BoostEnd:       expiry,
		DurationHours:  int(duration.Hours()),
		IntervalSecs:   int(BoostInterval.Seconds()),
		EstimatedCalls: estimated,
	}
}

// Deactivate removes a subscriber's boost window. It persists only when a
// window was actually removed and reports whether one was active.
func (b *BoostManager) Deactivate(ctx context.Context, subscriberID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.windows[subscriberID]; !ok {
		return false
	}

	delete(b.windows, subscriberID)
	b.save(ctx)
	b.logger.Info("Boost mode deactivated", "subscriber", subscriberID)
	if b.metrics != nil {
		b.metrics.BoostActive.WithLabelValues(subscriberID).Set(0)
	}
	return true
}

// IsActive reports whether a live boost window exists. A window found to
// be expired is removed and the removal persisted within the same call, so
// liveness and cleanup cannot disagree.
func (b *BoostManager) IsActive(ctx context.Context, subscriberID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isActiveLocked(ctx, subscriberID)
}

func (b *BoostManager) isActiveLocked(ctx context.Context, subscriberID string) bool {
	expiry, ok := b.windows[subscriberID]
	if !ok {
		return false
	}

	if !expiry.After(b.now().UTC()) {
		delete(b.windows, subscriberID)
		b.save(ctx)
		b.logger.Info("Boost mode expired", "subscriber", subscriberID)
		if b.metrics != nil {
			b.metrics.BoostActive.WithLabelValues(subscriberID).Set(0)
		}
		return false
	}
	return true
}

// EffectiveInterval returns the boost interval when a live window exists,
// zero otherwise
func (b *BoostManager) EffectiveInterval(ctx context.Context, subscriberID string) time.Duration {
	if b.IsActive(ctx, subscriberID) {
		return BoostInterval
	}
	return 0
}

// Info returns details of an active boost, or nil when none is live
func (b *BoostManager) Info(ctx context.Context, subscriberID string) *BoostInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isActiveLocked(ctx, subscriberID) {
		return nil
	}

	expiry := b.windows[subscriberID]
	remaining := expiry.Sub(b.now().UTC())
	return &BoostInfo{
		Active:           true,
		BoostEnd:         expiry,
		RemainingSeconds: int(remaining.Seconds()),
		RemainingMinutes: int(remaining.Minutes()),
		IntervalSecs:     int(BoostInterval.Seconds()),
	}
}

// ActiveBoosts returns details for every live boost window
func (b *BoostManager) ActiveBoosts(ctx context.Context) map[string]*BoostInfo {
	b.mu.Lock()
	ids := make([]string, 0, len(b.windows))
	for id := range b.windows {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	active := make(map[string]*BoostInfo)
	for _, id := range ids {
		if info := b.Info(ctx, id); info != nil {
			active[id] = info
		}
	}
	return active
}

// PurgeExpired removes every expired window in one sweep and returns how
// many were removed. Used at startup.
func (b *BoostManager) PurgeExpired(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	removed := 0
	for id, expiry := range b.windows {
		if !expiry.After(now) {
			delete(b.windows, id)
			removed++
			b.logger.Info("Cleaned up expired boost", "subscriber", id)
		}
	}
	if removed > 0 {
		b.save(ctx)
	}
	return removed
}
