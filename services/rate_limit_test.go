package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestRateLimiter(clock *testClock) *RateLimitService {
	return &RateLimitService{
		windows:      make(map[string]*model.ClientWindows),
		maxPerMinute: MaxRequestsPerMinute,
		maxPerHour:   MaxRequestsPerHour,
		maxPerDay:    MaxRequestsPerDay,
		now:          clock.Now,
	}
}

func TestRateLimitMinuteBound(t *testing.T) {
	clock := newTestClock()
	svc := newTestRateLimiter(clock)

	for i := 0; i < MaxRequestsPerMinute; i++ {
		allowed, _, _ := svc.Allow("1.2.3.4")
		require.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, reason, block := svc.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, "Rate limit exceeded: Maximum 10 requests per minute", reason)
	assert.Nil(t, block)

	clock.Advance(61 * time.Second)
	allowed, _, _ = svc.Allow("1.2.3.4")
	assert.True(t, allowed, "minute window should reset after it ages out")
}

func TestRateLimitRejectionLeavesCountersUntouched(t *testing.T) {
	clock := newTestClock()
	svc := newTestRateLimiter(clock)

	for i := 0; i < MaxRequestsPerMinute; i++ {
		svc.Allow("1.2.3.4")
	}
	require.Equal(t, MaxRequestsPerMinute, svc.DailyCount("1.2.3.4"))

	for i := 0; i < 5; i++ {
		allowed, _, _ := svc.Allow("1.2.3.4")
		require.False(t, allowed)
	}

	assert.Equal(t, MaxRequestsPerMinute, svc.DailyCount("1.2.3.4"),
		"minute-bound rejections must not advance the day counter")
}

func TestRateLimitAddressesAreIndependent(t *testing.T) {
	clock := newTestClock()
	svc := newTestRateLimiter(clock)

	for i := 0; i < MaxRequestsPerMinute; i++ {
		svc.Allow("1.2.3.4")
	}
	allowed, _, _ := svc.Allow("1.2.3.4")
	require.False(t, allowed)

	allowed, _, _ = svc.Allow("5.6.7.8")
	assert.True(t, allowed)
	assert.Equal(t, 2, svc.TrackedAddresses())
}

func TestRateLimitDailyBlock(t *testing.T) {
	clock := newTestClock()
	svc := newTestRateLimiter(clock)

	// Pace requests under the minute and hour bounds until the day count
	// sits exactly at the limit.
	admitted := 0
	for admitted < MaxRequestsPerDay {
		for i := 0; i < MaxRequestsPerMinute && admitted < MaxRequestsPerDay; i++ {
			if admitted == MaxRequestsPerHour {
				clock.Advance(61 * time.Minute)
			}
			allowed, reason, _ := svc.Allow("1.2.3.4")
			require.True(t, allowed, "request %d rejected: %s", admitted+1, reason)
			admitted++
		}
		clock.Advance(61 * time.Second)
	}

	// Clear the minute window so the day bound is the one that trips.
	clock.Advance(61 * time.Second)

	allowed, reason, block := svc.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t,
		fmt.Sprintf("Daily limit exceeded: Maximum %d requests per day. IP has been blocked.", MaxRequestsPerDay),
		reason)
	require.NotNil(t, block)
	assert.Equal(t, "1.2.3.4", block.Address)
	assert.Equal(t, MaxRequestsPerDay+1, block.RequestCount)
	assert.Equal(t,
		fmt.Sprintf("Exceeded daily limit: %d requests in 24 hours", MaxRequestsPerDay+1),
		block.Reason)
}

func TestRateLimitReset(t *testing.T) {
	clock := newTestClock()
	svc := newTestRateLimiter(clock)

	for i := 0; i < MaxRequestsPerMinute; i++ {
		svc.Allow("1.2.3.4")
	}
	allowed, _, _ := svc.Allow("1.2.3.4")
	require.False(t, allowed)

	svc.Reset("1.2.3.4")

	allowed, _, _ = svc.Allow("1.2.3.4")
	assert.True(t, allowed)
	assert.Equal(t, 1, svc.DailyCount("1.2.3.4"))
}
