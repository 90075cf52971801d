package accessgate

import (
	"time"

	"github.com/quantrail/accessgate/rate"
)

// Config is the full configuration surface of the plane. Configure once
// during initialization and treat as immutable.
type Config struct {
	JWT       JWTConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig

	// CookieName is the fallback cookie holding the access token when no
	// Authorization header is present. Defaults to "access_token".
	CookieName string
}

// JWTConfig configures the token authority.
type JWTConfig struct {
	// AccessTTL is the access credential lifetime. Default 24h.
	AccessTTL time.Duration
	// RefreshTTL is the refresh credential lifetime. Default 7d.
	RefreshTTL time.Duration
	// SigningMethod is "hs256" (default) or "ed25519".
	SigningMethod string
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// SessionConfig configures session retention and sweeping.
type SessionConfig struct {
	// InactivityLimit is how long a session may sit idle before the sweeper
	// purges it. Default 7d.
	InactivityLimit time.Duration
	// SweepInterval is the sweeper tick. Default 1h.
	SweepInterval time.Duration
	// RedisPrefix namespaces keys when the Redis store is used.
	RedisPrefix string
}

// RateLimitConfig carries the per-tier admission table.
type RateLimitConfig struct {
	// Limits maps each endpoint tier to its window and budget. Missing
	// tiers are filled from rate.DefaultLimits.
	Limits map[rate.Tier]rate.TierConfig
}

// AuditConfig controls the event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     24 * time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Session: SessionConfig{
			InactivityLimit: 7 * 24 * time.Hour,
			SweepInterval:   time.Hour,
		},
		RateLimit: RateLimitConfig{
			Limits: rate.DefaultLimits(),
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		CookieName: "access_token",
	}
}

// normalize fills zero-valued fields with defaults so a partially specified
// Config behaves predictably.
func (c *Config) normalize() {
	def := defaultConfig()

	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL <= 0 {
		c.JWT.RefreshTTL = def.JWT.RefreshTTL
	}
	if c.JWT.SigningMethod == "" {
		c.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if c.Session.InactivityLimit <= 0 {
		c.Session.InactivityLimit = def.Session.InactivityLimit
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = def.Session.SweepInterval
	}
	if c.CookieName == "" {
		c.CookieName = def.CookieName
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}

	if c.RateLimit.Limits == nil {
		c.RateLimit.Limits = rate.DefaultLimits()
		return
	}
	for tier, cfg := range rate.DefaultLimits() {
		if _, ok := c.RateLimit.Limits[tier]; !ok {
			c.RateLimit.Limits[tier] = cfg
		}
	}
}
