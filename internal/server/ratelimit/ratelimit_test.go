package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int) (*Limiter, *fakeClock) {
	cfg := NewConfig(limit)
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l.now = clock.now
	return l, clock
}

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/score", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/score", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, time.Minute, info.RetryAfter)
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(2)
	defer l.Stop()

	allowed, _ := l.Allow("c", "/score", "POST")
	require.True(t, allowed)
	clock.advance(30 * time.Second)
	allowed, _ = l.Allow("c", "/score", "POST")
	require.True(t, allowed)

	allowed, info := l.Allow("c", "/score", "POST")
	require.False(t, allowed)
	assert.Equal(t, 30*time.Second, info.RetryAfter, "first hit leaves the window in 30s")

	clock.advance(31 * time.Second)
	allowed, info = l.Allow("c", "/score", "POST")
	assert.True(t, allowed, "the first hit slid out of the window")
	assert.Equal(t, 0, info.Remaining)
}

func TestLimiter_RejectedRequestsDoNotCount(t *testing.T) {
	l, clock := newTestLimiter(1)
	defer l.Stop()

	allowed, _ := l.Allow("c", "/score", "POST")
	require.True(t, allowed)
	for i := 0; i < 5; i++ {
		allowed, _ = l.Allow("c", "/score", "POST")
		require.False(t, allowed)
	}

	clock.advance(61 * time.Second)
	allowed, _ = l.Allow("c", "/score", "POST")
	assert.True(t, allowed)
}

func TestLimiter_SeparateKeys(t *testing.T) {
	l, _ := newTestLimiter(1)
	defer l.Stop()

	allowed, _ := l.Allow("a", "/score", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("b", "/score", "POST")
	assert.True(t, allowed, "clients are limited independently")
	allowed, _ = l.Allow("a", "/questions", "POST")
	assert.True(t, allowed, "endpoints are limited independently")
	allowed, _ = l.Allow("a", "/score", "POST")
	assert.False(t, allowed)
}

func TestLimiter_EndpointOverrides(t *testing.T) {
	l, _ := newTestLimiter(2)
	defer l.Stop()

	for i := 0; i < 8; i++ {
		allowed, info := l.Allow("c", "/estimate", "POST")
		require.True(t, allowed, "estimate request %d", i+1)
		assert.Equal(t, 8, info.Limit)
	}
	allowed, _ := l.Allow("c", "/estimate", "POST")
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(1)
	defer l.Stop()

	for _, path := range []string{"/health", "/score/health"} {
		for i := 0; i < 10; i++ {
			allowed, info := l.Allow("c", path, "GET")
			require.True(t, allowed)
			assert.Equal(t, 0, info.Limit)
		}
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(NewConfig(0))
	defer l.Stop()

	assert.False(t, l.Enabled())
	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("c", "/score", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	l, _ := newTestLimiter(1)
	defer l.Stop()
	l.config.Whitelist["trusted"] = true

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("trusted", "/score", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_CleanupIdleWindows(t *testing.T) {
	l, clock := newTestLimiter(5)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("client-%d", i), "/score", "POST")
	}
	require.Equal(t, 3, l.size())

	clock.advance(30 * time.Second)
	l.Allow("client-0", "/score", "POST")
	clock.advance(45 * time.Second)
	l.cleanupWindows()

	assert.Equal(t, 1, l.size(), "only the recently used window survives")
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(50)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/score", "POST"); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, admitted)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(NewConfig(10))
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/score", Method: "POST", Limit: 1},
		{Path: "/v1/", Method: "POST", Limit: 2},
	}

	assert.Equal(t, 1, MatchEndpoint("/score", "POST", configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/v1/score", "POST", configs).Limit)
	assert.Nil(t, MatchEndpoint("/score", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}
