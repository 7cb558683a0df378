package repository

import "context"

// CallLogRepository persists the rolling-window call timestamp list.
// Timestamps are UTC epoch seconds.
type CallLogRepository interface {
	Load(ctx context.Context) ([]int64, error)
	Save(ctx context.Context, timestamps []int64) error
}
