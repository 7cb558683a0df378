package repository

import (
	"context"

	"swedavia-flights-service/internal/domain/entity"
)

// SubscriberRepository defines the interface for subscriber configuration.
// All returns subscribers in a stable order; the scheduler's stagger offsets
// depend on each subscriber's position in that enumeration.
type SubscriberRepository interface {
	All(ctx context.Context) ([]*entity.Subscriber, error)
	FindByAirport(ctx context.Context, airport string) (*entity.Subscriber, error)
	Upsert(ctx context.Context, subscriber *entity.Subscriber) error
}
