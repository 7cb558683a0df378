package repository

import (
	"context"

	"swedavia-flights-service/internal/domain/entity"
)

// AirportRepository defines the interface for the airport reference table
type AirportRepository interface {
	GetByIATA(ctx context.Context, iata string) (*entity.Airport, error)
	All(ctx context.Context) ([]*entity.Airport, error)
}
