package accessgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quantrail/accessgate/audit"
	"github.com/quantrail/accessgate/jwt"
	"github.com/quantrail/accessgate/permission"
	"github.com/quantrail/accessgate/rate"
	"github.com/quantrail/accessgate/session"
)

// Plane is the access control plane service object. It owns the credential
// store and the rate limiter; all mutation of either flows through its
// operations or its sweeper, never through route handlers.
type Plane struct {
	config     Config
	jwtManager *jwt.Manager
	store      session.Store
	limiter    *rate.Limiter
	metrics    *Metrics
	auditor    *audit.Dispatcher
	validate   *validator.Validate
	now        func() time.Time

	sweeper *sweeperState
}

// CreateSession issues a new access/refresh credential pair for an already
// authenticated identity and records the backing Session and refresh record.
func (p *Plane) CreateSession(ctx context.Context, identity Identity) (*TokenPair, error) {
	if err := p.validate.Struct(identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if !identity.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q not in closed role set", ErrInvalidIdentity, identity.Role)
	}

	perms := permission.Defaults(identity.Role)
	if identity.Permissions != nil {
		perms = *identity.Permissions
	}

	now := p.now()
	sess := &session.Session{
		SessionID:    uuid.NewString(),
		UserID:       identity.UserID,
		Email:        identity.Email,
		Role:         identity.Role,
		Permissions:  perms,
		MFAVerified:  identity.MFAVerified,
		CreatedAt:    now,
		LastActivity: now,
	}

	accessExpiresAt := now.Add(p.config.JWT.AccessTTL)
	refreshExpiresAt := now.Add(p.config.JWT.RefreshTTL)

	accessToken, err := p.jwtManager.Sign(jwt.Claims{
		UserID:      sess.UserID,
		Email:       sess.Email,
		Role:        string(sess.Role),
		SessionID:   sess.SessionID,
		Permissions: perms.Names(),
		MFAVerified: sess.MFAVerified,
		TokenType:   jwt.TypeAccess,
	}, accessExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := p.jwtManager.Sign(jwt.Claims{
		UserID:    sess.UserID,
		SessionID: sess.SessionID,
		TokenType: jwt.TypeRefresh,
	}, refreshExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := p.store.SaveSession(ctx, sess); err != nil {
		return nil, p.storeErr(err)
	}
	if err := p.store.SaveRefresh(ctx, refreshToken, session.RefreshRecord{
		UserID:    sess.UserID,
		SessionID: sess.SessionID,
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return nil, p.storeErr(err)
	}

	p.metrics.Inc(MetricSessionCreated)
	p.emit(ctx, "session_created", sess.UserID, sess.SessionID, true, nil)

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// ValidateAccessToken verifies an access credential and returns the live
// Session behind it. Checks run cheapest-first: signature and shape, then
// the type discriminator, then expiry, and only then the store lookup, so a
// forged token never touches the credential store. LastActivity is updated
// on success, and the returned Session reflects current server-side state,
// not the claims frozen at issuance.
func (p *Plane) ValidateAccessToken(ctx context.Context, token string) (*session.Session, error) {
	start := p.now()

	claims, err := p.jwtManager.Parse(token, jwt.TypeAccess)
	if err != nil {
		p.metrics.Inc(MetricValidateFailure)
		return nil, mapTokenErr(err)
	}

	sess, err := p.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		p.metrics.Inc(MetricValidateFailure)
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, p.storeErr(err)
	}

	now := p.now()
	if err := p.store.TouchSession(ctx, claims.SessionID, now); err != nil {
		p.metrics.Inc(MetricValidateFailure)
		// The sweeper may delete the session between lookup and touch; that
		// resolves deterministically to "session not found".
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, p.storeErr(err)
	}
	sess.LastActivity = now

	p.metrics.Inc(MetricValidateSuccess)
	p.metrics.Observe(MetricValidateLatency, p.now().Sub(start))
	return sess, nil
}

// RefreshAccessToken exchanges a refresh credential for a fresh access
// token. The refresh credential itself is not rotated: the returned pair
// carries the same refresh token and its original expiry. An expired record
// is deleted as a side effect of the failure.
func (p *Plane) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	// The token must be well formed and carry the refresh discriminator, but
	// identity comes from the live record below, not from its claims.
	if _, err := p.jwtManager.Parse(refreshToken, jwt.TypeRefresh); err != nil {
		p.metrics.Inc(MetricRefreshFailure)
		return nil, mapTokenErr(err)
	}

	rec, err := p.store.GetRefresh(ctx, refreshToken)
	if err != nil {
		p.metrics.Inc(MetricRefreshFailure)
		if errors.Is(err, session.ErrRefreshNotFound) {
			return nil, ErrRefreshUnknown
		}
		return nil, p.storeErr(err)
	}

	now := p.now()
	if now.After(rec.ExpiresAt) {
		p.metrics.Inc(MetricRefreshFailure)
		if _, delErr := p.store.DeleteRefresh(ctx, refreshToken); delErr != nil {
			return nil, p.storeErr(delErr)
		}
		return nil, ErrRefreshExpired
	}

	sess, err := p.store.GetSession(ctx, rec.SessionID)
	if err != nil {
		p.metrics.Inc(MetricRefreshFailure)
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, p.storeErr(err)
	}

	accessExpiresAt := now.Add(p.config.JWT.AccessTTL)
	accessToken, err := p.jwtManager.Sign(jwt.Claims{
		UserID:      sess.UserID,
		Email:       sess.Email,
		Role:        string(sess.Role),
		SessionID:   sess.SessionID,
		Permissions: sess.Permissions.Names(),
		MFAVerified: sess.MFAVerified,
		TokenType:   jwt.TypeAccess,
	}, accessExpiresAt)
	if err != nil {
		p.metrics.Inc(MetricRefreshFailure)
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	p.metrics.Inc(MetricRefreshSuccess)
	p.emit(ctx, "token_refreshed", sess.UserID, sess.SessionID, true, nil)

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

// Revoke destroys a session and every refresh record owned by the session's
// user, so revocation means "log out everywhere". Revoking a missing session
// is a no-op returning false.
func (p *Plane) Revoke(ctx context.Context, sessionID string) (bool, error) {
	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return false, nil
		}
		return false, p.storeErr(err)
	}

	if _, err := p.store.DeleteSession(ctx, sessionID); err != nil {
		return false, p.storeErr(err)
	}
	if _, err := p.store.DeleteRefreshForUser(ctx, sess.UserID); err != nil {
		return false, p.storeErr(err)
	}

	p.metrics.Inc(MetricSessionRevoked)
	p.emit(ctx, "session_revoked", sess.UserID, sessionID, true, nil)
	return true, nil
}

// HasPermission reports whether the session may exercise the capability.
// Admin is a hard-coded superuser bypass; every other role checks set
// membership.
func (p *Plane) HasPermission(sess *session.Session, required permission.Capability) bool {
	if sess == nil {
		return false
	}
	if sess.Role == permission.RoleAdmin {
		return true
	}
	return sess.Permissions.Has(required)
}

// Limiter exposes the admission limiter to the gate middleware.
func (p *Plane) Limiter() *rate.Limiter {
	return p.limiter
}

// CookieName is the configured access-token cookie name.
func (p *Plane) CookieName() string {
	return p.config.CookieName
}

// Metrics exposes the in-process metrics system.
func (p *Plane) Metrics() *Metrics {
	return p.metrics
}

// MetricsSnapshot returns a point-in-time deep copy of all metrics.
func (p *Plane) MetricsSnapshot() MetricsSnapshot {
	if p == nil || p.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return p.metrics.Snapshot()
}

// AuditDropped reports events dropped by dispatcher backpressure.
func (p *Plane) AuditDropped() uint64 {
	if p == nil {
		return 0
	}
	return p.auditor.Dropped()
}

// EmitDenial forwards a gate denial to the audit dispatcher. Called by the
// middleware so denial events carry request metadata the plane cannot see.
func (p *Plane) EmitDenial(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	p.auditor.Emit(ctx, event)
}

// Close stops the sweeper and flushes the audit dispatcher.
func (p *Plane) Close() {
	if p == nil {
		return
	}
	p.stopSweeping()
	p.auditor.Close()
}

func (p *Plane) emit(ctx context.Context, eventType, userID, sessionID string, success bool, err error) {
	if p.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp: p.now(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	p.auditor.Emit(ctx, event)
}

func (p *Plane) storeErr(err error) error {
	if errors.Is(err, session.ErrBackendUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrWrongTokenType):
		return ErrWrongTokenType
	default:
		return ErrTokenMalformed
	}
}
