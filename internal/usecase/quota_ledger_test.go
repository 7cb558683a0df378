package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swedavia-flights-service/pkg/logger"
)

type memCallLogRepo struct {
	timestamps []int64
	loadErr    error
	saveErr    error
	saves      int
}

func (r *memCallLogRepo) Load(ctx context.Context) ([]int64, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]int64(nil), r.timestamps...), nil
}

func (r *memCallLogRepo) Save(ctx context.Context, timestamps []int64) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.timestamps = append([]int64(nil), timestamps...)
	r.saves++
	return nil
}

func newTestLedger(t *testing.T, repo *memCallLogRepo) *QuotaLedger {
	t.Helper()
	return NewQuotaLedger(context.Background(), repo, logger.NewNopLogger(), nil)
}

func TestQuotaLedgerRecordAndCount(t *testing.T) {
	repo := &memCallLogRepo{}
	ledger := newTestLedger(t, repo)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }

	ledger.RecordCall(context.Background())
	ledger.RecordCall(context.Background())
	ledger.RecordCall(context.Background())

	assert.Equal(t, 3, ledger.Count())
	assert.Equal(t, CallLimit-3, ledger.Remaining())
	assert.InDelta(t, 3.0/CallLimit*100, ledger.PercentageUsed(), 1e-9)
	assert.Equal(t, 3, repo.saves, "every mutation persists")
}

func TestQuotaLedgerPrunesAtReadTime(t *testing.T) {
	repo := &memCallLogRepo{}
	ledger := newTestLedger(t, repo)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }
	ledger.RecordCall(context.Background())
	ledger.RecordCall(context.Background())
	require.Equal(t, 2, ledger.Count())

	// No further writes happen, yet the count must shrink once the
	// records age out of the 30-day window
	now = now.Add(RollingWindowDays*24*time.Hour + time.Minute)
	assert.Equal(t, 0, ledger.Count())
	assert.Equal(t, CallLimit, ledger.Remaining())
}

func TestQuotaLedgerRecordPrunesOldEntries(t *testing.T) {
	// Construction prunes against the wall clock, so the fixture must be
	// anchored to it
	base := time.Now().UTC().Truncate(time.Second)
	repo := &memCallLogRepo{timestamps: []int64{
		base.Add(-40 * 24 * time.Hour).Unix(), // outside the window
		base.Add(-10 * 24 * time.Hour).Unix(),
	}}

	ledger := newTestLedger(t, repo)
	ledger.now = func() time.Time { return base }

	ledger.RecordCall(context.Background())

	assert.Equal(t, 2, ledger.Count())
	assert.Len(t, repo.timestamps, 2, "persisted set is pruned")
}

func TestQuotaLedgerRemainingNeverNegative(t *testing.T) {
	repo := &memCallLogRepo{}
	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < CallLimit+5; i++ {
		repo.timestamps = append(repo.timestamps, now.Unix())
	}

	ledger := newTestLedger(t, repo)
	ledger.now = func() time.Time { return now }

	assert.Equal(t, CallLimit+5, ledger.Count())
	assert.Equal(t, 0, ledger.Remaining())
	assert.Greater(t, ledger.PercentageUsed(), 100.0)
}

func TestQuotaLedgerLoadFailureStartsEmpty(t *testing.T) {
	repo := &memCallLogRepo{loadErr: errors.New("storage down")}
	ledger := newTestLedger(t, repo)

	assert.Equal(t, 0, ledger.Count())
	assert.Equal(t, CallLimit, ledger.Remaining())
}

func TestQuotaLedgerRoundTrip(t *testing.T) {
	repo := &memCallLogRepo{}
	now := time.Now().UTC().Truncate(time.Second)

	first := newTestLedger(t, repo)
	first.now = func() time.Time { return now }
	first.RecordCall(context.Background())
	first.RecordCall(context.Background())

	// A new ledger over the same storage sees the same usage
	second := newTestLedger(t, repo)
	second.now = func() time.Time { return now }
	assert.Equal(t, first.Count(), second.Count())
}

func TestQuotaLedgerStats(t *testing.T) {
	repo := &memCallLogRepo{}
	ledger := newTestLedger(t, repo)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }
	ledger.RecordCall(context.Background())

	stats := ledger.Stats()
	assert.Equal(t, 1, stats.TotalCalls30Days)
	assert.Equal(t, CallLimit-1, stats.RemainingCalls)
	assert.Equal(t, CallLimit, stats.Limit)
	assert.Equal(t, RollingWindowDays, stats.RollingWindowDays)
	assert.Equal(t, now.Format(time.RFC3339), stats.OldestCall)
}
