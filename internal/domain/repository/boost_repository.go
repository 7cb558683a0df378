package repository

import (
	"context"
	"time"
)

// BoostRepository persists the subscriber-id to boost-expiry map
type BoostRepository interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, windows map[string]time.Time) error
}
