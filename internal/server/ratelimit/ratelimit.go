// Package ratelimit provides per-client rate limiting over a sliding time window.
package ratelimit

import (
	"sync"
	"time"
)

// slidingWindow records the request times inside the current window.
type slidingWindow struct {
	mu   sync.Mutex
	hits []time.Time
	last time.Time
}

// allow drops hits older than size and admits the request if fewer than limit remain.
func (w *slidingWindow) allow(now time.Time, limit int, size time.Duration) (allowed bool, remaining int, reset time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-size)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	w.last = now

	if len(w.hits) < limit {
		w.hits = append(w.hits, now)
		allowed = true
	}

	remaining = limit - len(w.hits)
	if remaining < 0 {
		remaining = 0
	}
	// The oldest hit leaving the window frees the next slot
	reset = now.Add(size)
	if len(w.hits) > 0 {
		reset = w.hits[0].Add(size)
	}
	return allowed, remaining, reset
}

func (w *slidingWindow) idleSince(cutoff time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last.Before(cutoff)
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients, one window per client and endpoint.
type Limiter struct {
	windows       map[string]*slidingWindow
	mu            sync.Mutex
	config        *Config
	now           func() time.Time
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: false}
	}
	if config.DefaultWindow <= 0 {
		config.DefaultWindow = Window
	}

	limiter := &Limiter{
		windows: make(map[string]*slidingWindow),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Enabled reports whether requests are limited at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Enabled
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.Enabled() || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}
	size := endpointConfig.Window
	if size <= 0 {
		size = l.config.DefaultWindow
	}

	key := clientID + ":" + endpoint + ":" + method
	now := l.now()
	allowed, remaining, reset := l.getWindow(key).allow(now, endpointConfig.Limit, size)

	var retryAfter time.Duration
	if !allowed {
		retryAfter = max(reset.Sub(now), 0)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) getWindow(key string) *slidingWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok {
		w = &slidingWindow{}
		l.windows[key] = w
	}
	return w
}

// cleanup periodically removes idle windows.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupWindows()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupWindows removes windows with no request for a full window length.
func (l *Limiter) cleanupWindows() {
	cutoff := l.now().Add(-l.config.DefaultWindow)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if w.idleSince(cutoff) {
			delete(l.windows, key)
		}
	}
}

// size returns the number of tracked windows.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
