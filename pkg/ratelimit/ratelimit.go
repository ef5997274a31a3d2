package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config defines a rate limit
type Config struct {
	// RequestsPerWindow is the sustained number of requests allowed per window
	RequestsPerWindow int
	// Window is the period RequestsPerWindow applies to
	Window time.Duration
	// Burst allows temporary bursts above the rate. The Redis limiter uses a
	// fixed window and ignores it.
	Burst int
}

// DefaultConfig returns the default API limit
func DefaultConfig() Config {
	return Config{
		RequestsPerWindow: 600,
		Window:            time.Minute,
		Burst:             60,
	}
}

// Enabled reports whether the config limits anything
func (c Config) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is when the key is back to a full quota
	Reset time.Time
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a per-process token bucket limiter
type MemoryLimiter struct {
	config  Config
	now     func() time.Time
	buckets map[string]*bucket
	mu      sync.Mutex
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewMemoryLimiter creates a token bucket limiter holding
// RequestsPerWindow+Burst tokens per key
func NewMemoryLimiter(config Config) *MemoryLimiter {
	return &MemoryLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) capacity() float64 {
	return float64(l.config.RequestsPerWindow + l.config.Burst)
}

func (l *MemoryLimiter) rate() float64 {
	return float64(l.config.RequestsPerWindow) / l.config.Window.Seconds()
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity(), lastUpdate: now}
		l.buckets[key] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastUpdate).Seconds()
	if elapsed > 0 {
		b.tokens = min(l.capacity(), b.tokens+elapsed*l.rate())
		b.lastUpdate = now
	}

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}

	missing := l.capacity() - b.tokens
	return Decision{
		Allowed:   allowed,
		Limit:     l.config.RequestsPerWindow,
		Remaining: int(b.tokens),
		Reset:     now.Add(time.Duration(missing / l.rate() * float64(time.Second))),
	}, nil
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Cleanup drops buckets that have been idle long enough to be full again
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastUpdate) > l.config.Window*2 {
			delete(l.buckets, key)
		}
	}
}

// StartCleanup runs Cleanup every window until ctx is done
func (l *MemoryLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.config.Window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
