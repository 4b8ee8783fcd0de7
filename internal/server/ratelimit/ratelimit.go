// Package ratelimit bounds per-client request rates with fixed-window
// counters before any work reaches the orchestrator.
//
// Two independent windows gate each client: a short one (default 60
// requests/minute) and a long one (default 500 requests/hour); exceeding
// either denies the request. Counters reset at window boundaries, which
// permits a burst of up to 2x the limit straddling a boundary, an accepted
// tradeoff over sliding-log precision. State is process-local and in-memory;
// horizontally scaled deployments rate-limit per instance.
package ratelimit

import (
	"sync"
	"time"
)

// window is one fixed-window counter. It resets lazily: the first request
// after the boundary starts a new window.
type window struct {
	start time.Time
	count int
}

// observe counts one request against the window, resetting it first if size
// has elapsed, and reports whether the count stayed within limit.
func (w *window) observe(now time.Time, size time.Duration, limit int) bool {
	if now.Sub(w.start) >= size {
		w.start = now.Truncate(size)
		w.count = 0
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// retryAfter reports how long until the window resets.
func (w *window) retryAfter(now time.Time, size time.Duration) time.Duration {
	d := w.start.Add(size).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// clientState tracks both windows for one client.
type clientState struct {
	minute   window
	hour     window
	lastSeen time.Time
}

// Info describes a rate-limit decision, with everything the HTTP layer needs
// to render a 429 and the X-RateLimit-* headers.
type Info struct {
	Allowed         bool
	LimitPerMinute  int
	LimitPerHour    int
	RemainingMinute int
	RetryAfter      time.Duration
	ResetTime       time.Time
}

// Limiter manages fixed-window rate limiting for multiple clients.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientState
	config  *Config

	now func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a rate limiter with the given configuration. A nil
// config uses the defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Limiter{
		clients: make(map[string]*clientState),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// SetClock overrides the limiter's time source. Test hook; call before the
// limiter is shared between goroutines.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow counts one request from clientKey against both windows and reports
// the decision. The critical section covers only the counter update.
func (l *Limiter) Allow(clientKey string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.clients[clientKey]
	if !ok {
		state = &clientState{}
		l.clients[clientKey] = state
	}
	state.lastSeen = now

	info := Info{
		LimitPerMinute: l.config.PerMinute,
		LimitPerHour:   l.config.PerHour,
	}

	if !state.minute.observe(now, time.Minute, l.config.PerMinute) {
		info.RetryAfter = state.minute.retryAfter(now, time.Minute)
		info.ResetTime = now.Add(info.RetryAfter)
		return false, info
	}
	if !state.hour.observe(now, time.Hour, l.config.PerHour) {
		// The minute slot consumed above is not rolled back; the hour window
		// dominates for the rest of its span anyway.
		info.RetryAfter = state.hour.retryAfter(now, time.Hour)
		info.ResetTime = now.Add(info.RetryAfter)
		return false, info
	}

	info.Allowed = true
	info.RemainingMinute = l.config.PerMinute - state.minute.count
	info.ResetTime = state.minute.start.Add(time.Minute)
	return true, info
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.removeIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

// removeIdle drops clients not seen for over an hour so the table cannot
// grow without bound.
func (l *Limiter) removeIdle() {
	cutoff := l.now().Add(-time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, state := range l.clients {
		if state.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
