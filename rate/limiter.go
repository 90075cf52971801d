package rate

import (
	"errors"
	"sync"
	"time"
)

// ErrUnknownTier is returned when a tier has no configured policy.
var ErrUnknownTier = errors.New("unknown rate tier")

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// Limit is the tier's per-window admission budget.
	Limit int
	// Remaining is the budget left in the current window.
	Remaining int
	// ResetAt is when the current window ends.
	ResetAt time.Time
	// RetryAfter is the time until ResetAt; zero when Allowed.
	RetryAfter time.Duration
	// Message is the tier's rejection text; empty when Allowed.
	Message string
}

type bucketKey struct {
	key  string
	tier Tier
}

type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter maintains fixed-window admission counters keyed by
// (caller identity, tier). Safe for concurrent use; one mutex guards the
// bucket map so simultaneous checks for one key can never over-admit.
type Limiter struct {
	limits map[Tier]TierConfig
	now    func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

// NewLimiter creates a [Limiter] over the given policy table. A nil now
// defaults to time.Now; tests inject a fake.
func NewLimiter(limits map[Tier]TierConfig, now func() time.Time) *Limiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		limits:  limits,
		now:     now,
		buckets: make(map[bucketKey]*bucket),
	}
}

// Check admits or denies one request for the key under the tier's policy.
// The counter increment is committed even if the caller later aborts the
// request; admission side effects are at-least-once.
func (l *Limiter) Check(key string, tier Tier) (Decision, error) {
	cfg, ok := l.limits[tier]
	if !ok {
		return Decision{}, ErrUnknownTier
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bk := bucketKey{key: key, tier: tier}
	b, ok := l.buckets[bk]
	if !ok || now.Sub(b.windowStart) >= cfg.Window {
		// Lazy reset: a fresh window starts on first access after expiry.
		l.buckets[bk] = &bucket{count: 1, windowStart: now}
		return Decision{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   now.Add(cfg.Window),
		}, nil
	}

	b.count++
	resetAt := b.windowStart.Add(cfg.Window)
	remaining := cfg.MaxRequests - b.count
	if remaining < 0 {
		remaining = 0
	}

	if b.count > cfg.MaxRequests {
		return Decision{
			Allowed:    false,
			Limit:      cfg.MaxRequests,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
			Message:    cfg.Message,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Limit returns the configured policy for a tier.
func (l *Limiter) Limit(tier Tier) (TierConfig, error) {
	cfg, ok := l.limits[tier]
	if !ok {
		return TierConfig{}, ErrUnknownTier
	}
	return cfg, nil
}

// Sweep deletes buckets whose window has long expired. Memory hygiene only:
// expired buckets reset lazily on next access regardless, so correctness
// does not depend on sweep timing. Returns the number removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for bk, b := range l.buckets {
		cfg, ok := l.limits[bk.tier]
		if !ok || now.Sub(b.windowStart) >= 2*cfg.Window {
			delete(l.buckets, bk)
			removed++
		}
	}
	return removed
}

// BucketCount reports the number of live buckets. Test helper.
func (l *Limiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
