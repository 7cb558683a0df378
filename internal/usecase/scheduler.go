package usecase

import (
	"time"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/pkg/logger"
)

const (
	// SafetyMargin keeps the fleet at 85% of the quota
	SafetyMargin = 0.85
	daysInMonth  = 30

	// MaxCallsPerDay is the daily safe budget derived from the quota,
	// floor(limit * 0.85 / 30)
	MaxCallsPerDay = CallLimit * 85 / 100 / daysInMonth // ~283 calls/day

	minIntervalMinutes = 5
	maxIntervalMinutes = 30

	// datesPerDirection is a fixed approximation: a 24h-ahead/2h-back
	// window typically spans today and tomorrow
	datesPerDirection = 2
)

// ScheduleInfo summarizes the current fleet-wide polling plan
type ScheduleInfo struct {
	TotalSubscribers      int     `json:"total_subscribers"`
	UpdateIntervalMinutes int     `json:"update_interval_minutes"`
	TotalCallsPerUpdate   int     `json:"total_calls_per_update"`
	UpdatesPerDay         int     `json:"updates_per_day"`
	EstimatedDailyCalls   int     `json:"estimated_daily_calls"`
	EstimatedMonthlyCalls int     `json:"estimated_monthly_calls"`
	PercentageOfLimit     float64 `json:"percentage_of_limit"`
	APILimit              int     `json:"api_limit"`
}

// UpdateScheduler computes the shared polling interval and per-subscriber
// stagger offsets from the full subscriber set. Every computation is a
// fresh pass over all subscribers; nothing is cached across changes.
type UpdateScheduler struct {
	logger logger.Logger
}

// NewUpdateScheduler creates a new scheduler
func NewUpdateScheduler(log logger.Logger) *UpdateScheduler {
	return &UpdateScheduler{logger: log}
}

// CallsPerUpdate is the fan-out factor: calls one poll of this subscriber
// consumes. 2 for a single direction, 4 for both.
func (s *UpdateScheduler) CallsPerUpdate(subscriber *entity.Subscriber) int {
	if subscriber.FlightType == entity.FlightTypeBoth {
		return datesPerDirection * 2
	}
	return datesPerDirection
}

// totalCallsPerUpdate sums the fan-out across the fleet
func (s *UpdateScheduler) totalCallsPerUpdate(subscribers []*entity.Subscriber) int {
	total := 0
	for _, subscriber := range subscribers {
		total += s.CallsPerUpdate(subscriber)
	}
	return total
}

// Interval computes the single polling interval shared by every
// subscriber. The daily budget is fleet-wide, so the cadence is too.
func (s *UpdateScheduler) Interval(subscribers []*entity.Subscriber) time.Duration {
	totalCalls := s.totalCallsPerUpdate(subscribers)

	// interval must satisfy (86400 / interval) * totalCalls < MaxCallsPerDay
	minIntervalSeconds := float64(86400*totalCalls) / float64(MaxCallsPerDay)

	// Round up to the next 5-minute boundary to avoid interval churn
	minutes := int(minIntervalSeconds/60) + 1
	rounded := (minutes + 4) / 5 * 5

	final := rounded
	if final < minIntervalMinutes {
		final = minIntervalMinutes
	}
	if final > maxIntervalMinutes {
		final = maxIntervalMinutes
	}

	interval := time.Duration(final) * time.Minute
	s.logger.Info("Calculated update interval",
		"intervalMinutes", final,
		"totalCallsPerUpdate", totalCalls,
		"subscribers", len(subscribers))
	return interval
}

// Offset computes the stagger delay for the subscriber at the given
// position, spreading first polls evenly across the shared interval.
// With a single subscriber the offset is always zero.
func (s *UpdateScheduler) Offset(subscribers []*entity.Subscriber, index int) time.Duration {
	if len(subscribers) <= 1 {
		return 0
	}

	interval := s.Interval(subscribers)
	offsetSeconds := interval.Seconds() / float64(len(subscribers)) * float64(index)
	offset := time.Duration(int(offsetSeconds)) * time.Second

	s.logger.Info("Calculated update offset",
		"offsetSeconds", int(offsetSeconds),
		"position", index+1,
		"total", len(subscribers))
	return offset
}

// Info reports the schedule's projected call consumption
func (s *UpdateScheduler) Info(subscribers []*entity.Subscriber) ScheduleInfo {
	if len(subscribers) == 0 {
		return ScheduleInfo{APILimit: CallLimit}
	}

	interval := s.Interval(subscribers)
	totalCalls := s.totalCallsPerUpdate(subscribers)

	updatesPerDay := 86400 / interval.Seconds()
	dailyCalls := int(updatesPerDay * float64(totalCalls))
	monthlyCalls := dailyCalls * daysInMonth

	return ScheduleInfo{
		TotalSubscribers:      len(subscribers),
		UpdateIntervalMinutes: int(interval.Minutes()),
		TotalCallsPerUpdate:   totalCalls,
		UpdatesPerDay:         int(updatesPerDay),
		EstimatedDailyCalls:   dailyCalls,
		EstimatedMonthlyCalls: monthlyCalls,
		PercentageOfLimit:     float64(monthlyCalls) / CallLimit * 100,
		APILimit:              CallLimit,
	}
}
