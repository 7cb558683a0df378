package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/internal/domain/repository"
	"swedavia-flights-service/pkg/logger"
	"swedavia-flights-service/pkg/metrics"
)

// FlightFetcher is the API gateway surface the poll cycle depends on
type FlightFetcher interface {
	FlightsByDateRange(ctx context.Context, airport string, direction entity.FlightType, hoursBack, hoursAhead int) ([]entity.Flight, error)
	UpdateKeys(primary, secondary string)
	ValidateConnection(ctx context.Context, airport string) error
}

// PollManager runs one poll loop per subscriber. Each loop picks its
// effective interval on every tick (boost interval while a boost window
// is live, the fleet interval otherwise), fetches the subscriber's
// directions and publishes a replacement snapshot. A failed cycle keeps
// the previous snapshot in place.
type PollManager struct {
	api         FlightFetcher
	scheduler   *UpdateScheduler
	boost       *BoostManager
	airportRepo repository.AirportRepository
	logger      logger.Logger
	metrics     *metrics.Metrics

	mu          sync.RWMutex
	subscribers []*entity.Subscriber
	snapshots   map[string]*entity.FlightSnapshot
	refresh     map[string]chan struct{}

	wg  sync.WaitGroup
	now func() time.Time
}

// NewPollManager creates a new poll manager
func NewPollManager(api FlightFetcher, scheduler *UpdateScheduler, boost *BoostManager, airportRepo repository.AirportRepository, log logger.Logger, m *metrics.Metrics) *PollManager {
	return &PollManager{
		api:         api,
		scheduler:   scheduler,
		boost:       boost,
		airportRepo: airportRepo,
		logger:      log,
		metrics:     m,
		snapshots:   make(map[string]*entity.FlightSnapshot),
		refresh:     make(map[string]chan struct{}),
		now:         time.Now,
	}
}

// Start computes the fleet schedule for the given subscriber set and
// launches one poll loop per subscriber. The stagger offset delays only
// the very first poll of each loop.
func (p *PollManager) Start(ctx context.Context, subscribers []*entity.Subscriber) {
	p.mu.Lock()
	p.subscribers = subscribers
	for _, subscriber := range subscribers {
		if _, ok := p.refresh[subscriber.Airport]; !ok {
			p.refresh[subscriber.Airport] = make(chan struct{}, 1)
		}
	}
	p.mu.Unlock()

	for i, subscriber := range subscribers {
		offset := p.scheduler.Offset(subscribers, i)
		p.wg.Add(1)
		go p.run(ctx, subscriber, offset)
	}

	info := p.scheduler.Info(subscribers)
	p.logger.Info("Poll manager started",
		"subscribers", info.TotalSubscribers,
		"intervalMinutes", info.UpdateIntervalMinutes,
		"estimatedDailyCalls", info.EstimatedDailyCalls)
}

// Wait blocks until every poll loop has stopped
func (p *PollManager) Wait() {
	p.wg.Wait()
}

func (p *PollManager) run(ctx context.Context, subscriber *entity.Subscriber, offset time.Duration) {
	defer p.wg.Done()

	log := p.logger.With("airport", subscriber.Airport)
	refreshCh := p.refreshChan(subscriber.Airport)

	if offset > 0 {
		log.Info("Delaying first poll for stagger", "offsetSeconds", int(offset.Seconds()))
	}

	timer := time.NewTimer(offset)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Poll loop stopped")
			return
		case <-refreshCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}

		p.pollOnce(ctx, subscriber, log)

		interval := p.effectiveInterval(ctx, subscriber)
		timer.Reset(interval)
	}
}

// effectiveInterval prefers a live boost window over the fleet schedule.
// Re-evaluated every cycle, so an expired boost falls back to the normal
// interval on the next tick without any explicit transition.
func (p *PollManager) effectiveInterval(ctx context.Context, subscriber *entity.Subscriber) time.Duration {
	if boosted := p.boost.EffectiveInterval(ctx, subscriber.ID); boosted > 0 {
		return boosted
	}

	p.mu.RLock()
	subscribers := p.subscribers
	p.mu.RUnlock()
	return p.scheduler.Interval(subscribers)
}

func (p *PollManager) pollOnce(ctx context.Context, subscriber *entity.Subscriber, log logger.Logger) {
	started := p.now()

	var arrivals, departures []entity.Flight
	var err error

	if subscriber.WantsArrivals() {
		arrivals, err = p.api.FlightsByDateRange(ctx, subscriber.Airport, entity.FlightTypeArrivals, subscriber.HoursBack, subscriber.HoursAhead)
		if err != nil {
			p.cycleFailed(subscriber, log, err)
			return
		}
		log.Debug("Fetched arrivals", "count", len(arrivals))
	}

	if subscriber.WantsDepartures() {
		departures, err = p.api.FlightsByDateRange(ctx, subscriber.Airport, entity.FlightTypeDepartures, subscriber.HoursBack, subscriber.HoursAhead)
		if err != nil {
			p.cycleFailed(subscriber, log, err)
			return
		}
		log.Debug("Fetched departures", "count", len(departures))
	}

	snapshot := BuildSnapshot(subscriber, p.airportName(ctx, subscriber.Airport), arrivals, departures, p.now().UTC())

	p.mu.Lock()
	p.snapshots[subscriber.Airport] = snapshot
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.PollCycles.WithLabelValues(subscriber.Airport, "success").Inc()
		p.metrics.FetchDuration.Observe(p.now().Sub(started).Seconds())
	}
	log.Info("Published flight snapshot",
		"arrivals", snapshot.ArrivalCount, "departures", snapshot.DepartureCount)
}

// cycleFailed logs the failure and leaves the last-known-good snapshot in
// place; the next tick retries.
func (p *PollManager) cycleFailed(subscriber *entity.Subscriber, log logger.Logger, err error) {
	log.Error("Poll cycle failed, keeping previous snapshot", "error", err)
	if p.metrics != nil {
		p.metrics.PollCycles.WithLabelValues(subscriber.Airport, "failure").Inc()
		p.metrics.ErrorsCount.WithLabelValues("poll").Inc()
	}
}

func (p *PollManager) airportName(ctx context.Context, iata string) string {
	if p.airportRepo == nil {
		return iata
	}
	airport, err := p.airportRepo.GetByIATA(ctx, iata)
	if err != nil {
		return iata
	}
	return airport.Name
}

func (p *PollManager) refreshChan(airport string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.refresh[airport]
	if !ok {
		ch = make(chan struct{}, 1)
		p.refresh[airport] = ch
	}
	return ch
}

// Snapshot returns the latest published snapshot for an airport
func (p *PollManager) Snapshot(airport string) (*entity.FlightSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snapshot, ok := p.snapshots[airport]
	return snapshot, ok
}

// Subscribers returns the active subscriber set
func (p *PollManager) Subscribers() []*entity.Subscriber {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subscribers
}

// ScheduleInfo reports the fleet's current polling plan
func (p *PollManager) ScheduleInfo() ScheduleInfo {
	return p.scheduler.Info(p.Subscribers())
}

// TriggerRefresh requests an immediate poll for one airport
func (p *PollManager) TriggerRefresh(airport string) {
	select {
	case p.refreshChan(airport) <- struct{}{}:
	default:
		// A refresh is already pending
	}
}

func (p *PollManager) findSubscriber(airport string) (*entity.Subscriber, error) {
	for _, subscriber := range p.Subscribers() {
		if subscriber.Airport == airport {
			return subscriber, nil
		}
	}
	return nil, fmt.Errorf("no subscriber configured for airport %s", airport)
}

// EnableBoost activates boost mode for an airport's subscriber and
// triggers an immediate refresh
func (p *PollManager) EnableBoost(ctx context.Context, airport string, durationHours int) (BoostResult, error) {
	subscriber, err := p.findSubscriber(airport)
	if err != nil {
		return BoostResult{}, err
	}

	result := p.boost.Activate(ctx, subscriber.ID, durationHours)
	p.TriggerRefresh(airport)
	return result, nil
}

// DisableBoost deactivates boost mode for an airport's subscriber. When a
// boost was active the next poll runs immediately on the normal interval.
func (p *PollManager) DisableBoost(ctx context.Context, airport string) (bool, error) {
	subscriber, err := p.findSubscriber(airport)
	if err != nil {
		return false, err
	}

	wasActive := p.boost.Deactivate(ctx, subscriber.ID)
	if wasActive {
		p.TriggerRefresh(airport)
	}
	return wasActive, nil
}

// UpdateKeys applies new subscription keys to the shared gateway,
// validates them against the first subscriber and refreshes the fleet
func (p *PollManager) UpdateKeys(ctx context.Context, primary, secondary string) error {
	if primary == "" && secondary == "" {
		return fmt.Errorf("at least one API key must be provided")
	}

	p.api.UpdateKeys(primary, secondary)

	subscribers := p.Subscribers()
	if len(subscribers) > 0 {
		if err := p.api.ValidateConnection(ctx, subscribers[0].Airport); err != nil {
			p.logger.Error("Key validation request failed", "error", err)
			return err
		}
	}

	for _, subscriber := range subscribers {
		p.TriggerRefresh(subscriber.Airport)
	}
	p.logger.Info("API keys updated for all subscribers", "count", len(subscribers))
	return nil
}
