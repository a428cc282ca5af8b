package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rayansh0071505/portfolio-api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuota(t *testing.T, path string, limit int, clock *testClock) *QuotaService {
	t.Helper()

	svc := &QuotaService{
		limit: limit,
		store: shared.NewFileStore(path),
		now:   clock.Now,
	}
	require.NoError(t, svc.Start())
	return svc
}

func TestQuotaConsumeUntilExhausted(t *testing.T) {
	clock := newTestClock()
	svc := newTestQuota(t, filepath.Join(t.TempDir(), "daily_quota.json"), 3, clock)

	for i := 0; i < 3; i++ {
		require.True(t, svc.TryConsume(), "consume %d should succeed", i+1)
	}

	assert.False(t, svc.TryConsume())
	assert.False(t, svc.TryConsume(), "exhausted quota must stay exhausted")

	stats := svc.Stats()
	assert.Equal(t, 3, stats.Used)
	assert.Equal(t, 3, stats.Limit)
	assert.Equal(t, "2025-06-01", stats.Date)
}

func TestQuotaResetsOnNewDay(t *testing.T) {
	clock := newTestClock()
	svc := newTestQuota(t, filepath.Join(t.TempDir(), "daily_quota.json"), 2, clock)

	require.True(t, svc.TryConsume())
	require.True(t, svc.TryConsume())
	require.False(t, svc.TryConsume())

	clock.Advance(24 * time.Hour)

	assert.True(t, svc.TryConsume(), "new date must reset the counter")
	stats := svc.Stats()
	assert.Equal(t, 1, stats.Used)
	assert.Equal(t, "2025-06-02", stats.Date)
}

func TestQuotaSurvivesRestart(t *testing.T) {
	clock := newTestClock()
	path := filepath.Join(t.TempDir(), "daily_quota.json")

	svc := newTestQuota(t, path, 10, clock)
	require.True(t, svc.TryConsume())
	require.True(t, svc.TryConsume())

	restarted := newTestQuota(t, path, 10, clock)
	assert.Equal(t, 2, restarted.Stats().Used)
}

func TestQuotaDiscardsStaleStateOnStart(t *testing.T) {
	clock := newTestClock()
	path := filepath.Join(t.TempDir(), "daily_quota.json")

	svc := newTestQuota(t, path, 10, clock)
	require.True(t, svc.TryConsume())

	later := newTestClock()
	later.Advance(48 * time.Hour)
	restarted := newTestQuota(t, path, 10, later)
	assert.Equal(t, 0, restarted.Stats().Used, "yesterday's count must not carry over")
}
