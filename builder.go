package accessgate

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/quantrail/accessgate/audit"
	"github.com/quantrail/accessgate/jwt"
	"github.com/quantrail/accessgate/rate"
	"github.com/quantrail/accessgate/session"
)

// Builder assembles a [Plane]. Configure it during initialization with the
// chained With* methods, then call Build exactly once.
type Builder struct {
	config Config
	store  session.Store
	redis  *redis.Client
	sink   audit.Sink
	now    func() time.Time

	built bool
}

// New returns a Builder preloaded with package defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		now:    time.Now,
	}
}

// WithConfig replaces the whole configuration. Zero-valued fields are filled
// with defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore supplies an explicit credential store. Takes precedence over
// WithRedis and the in-memory default.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis backs the credential store with Redis instead of process memory.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink enables audit dispatch into the given sink.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithNow overrides the plane's clock. Intended for tests.
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validation latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the plane. The sweeper is
// not started; call [Plane.StartSweeping] when background reclamation is
// wanted.
func (b *Builder) Build() (*Plane, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := b.config
	cfg.normalize()

	if b.now == nil {
		b.now = time.Now
	}

	manager, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
		Now:           b.now,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt manager: %w", err)
	}

	store := b.store
	if store == nil {
		if b.redis != nil {
			store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
		} else {
			store = session.NewMemoryStore()
		}
	}

	limiter := rate.NewLimiter(cfg.RateLimit.Limits, b.now)

	var dispatcher *audit.Dispatcher
	if cfg.Audit.Enabled {
		if b.sink == nil {
			return nil, errors.New("audit enabled but no sink provided")
		}
		dispatcher = audit.NewDispatcher(audit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.sink)
	}

	return &Plane{
		config:     cfg,
		jwtManager: manager,
		store:      store,
		limiter:    limiter,
		metrics:    NewMetrics(cfg.Metrics),
		auditor:    dispatcher,
		validate:   validator.New(),
		now:        b.now,
		sweeper:    newSweeperState(),
	}, nil
}
