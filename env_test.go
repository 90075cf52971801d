package accessgate

import (
	"errors"
	"testing"
	"time"

	"github.com/quantrail/accessgate/rate"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}

	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Fatalf("access ttl = %v, want 24h", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("refresh ttl = %v, want 168h", cfg.JWT.RefreshTTL)
	}
	if cfg.Session.InactivityLimit != 7*24*time.Hour {
		t.Fatalf("inactivity = %v, want 168h", cfg.Session.InactivityLimit)
	}
	if cfg.Session.SweepInterval != time.Hour {
		t.Fatalf("sweep interval = %v, want 1h", cfg.Session.SweepInterval)
	}
	if cfg.CookieName != "access_token" {
		t.Fatalf("cookie = %q", cfg.CookieName)
	}

	trading := cfg.RateLimit.Limits[rate.TierTrading]
	if trading.MaxRequests != 10 || trading.Window != time.Minute {
		t.Fatalf("trading tier = %+v", trading)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ACCESSGATE_SIGNING_METHOD", "hs256")
	t.Setenv("ACCESSGATE_SIGNING_KEY", "env-secret")
	t.Setenv("ACCESSGATE_JWT_ISSUER", "trading-app")
	t.Setenv("ACCESSGATE_ACCESS_TTL", "30m")
	t.Setenv("ACCESSGATE_RATE_TRADING_WINDOW_MS", "30000")
	t.Setenv("ACCESSGATE_RATE_TRADING_MAX", "3")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}

	if string(cfg.JWT.PrivateKey) != "env-secret" {
		t.Fatalf("private key = %q", cfg.JWT.PrivateKey)
	}
	if cfg.JWT.Issuer != "trading-app" {
		t.Fatalf("issuer = %q", cfg.JWT.Issuer)
	}
	if cfg.JWT.AccessTTL != 30*time.Minute {
		t.Fatalf("access ttl = %v, want 30m", cfg.JWT.AccessTTL)
	}

	trading := cfg.RateLimit.Limits[rate.TierTrading]
	if trading.Window != 30*time.Second || trading.MaxRequests != 3 {
		t.Fatalf("trading tier = %+v", trading)
	}
	// Untouched tiers keep their defaults.
	if auth := cfg.RateLimit.Limits[rate.TierAuth]; auth.MaxRequests != 5 {
		t.Fatalf("auth tier = %+v", auth)
	}
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("ACCESSGATE_ACCESS_TTL", "soon")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for invalid duration")
	}

	t.Setenv("ACCESSGATE_ACCESS_TTL", "-5m")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestConfigNormalizeFillsMissingTiers(t *testing.T) {
	cfg := Config{}
	cfg.RateLimit.Limits = map[rate.Tier]rate.TierConfig{
		rate.TierTrading: {Window: time.Second, MaxRequests: 1, Message: "custom"},
	}
	cfg.normalize()

	if got := cfg.RateLimit.Limits[rate.TierTrading]; got.MaxRequests != 1 {
		t.Fatalf("custom tier overwritten: %+v", got)
	}
	if got := cfg.RateLimit.Limits[rate.TierVault]; got.MaxRequests != 20 {
		t.Fatalf("vault tier not filled: %+v", got)
	}
	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Fatalf("access ttl not defaulted: %v", cfg.JWT.AccessTTL)
	}
}

func TestErrorKindNames(t *testing.T) {
	cases := map[string]error{
		"malformed_token":   ErrTokenMalformed,
		"wrong_token_type":  ErrWrongTokenType,
		"token_expired":     ErrTokenExpired,
		"session_not_found": ErrSessionNotFound,
		"refresh_expired":   ErrRefreshExpired,
		"refresh_unknown":   ErrRefreshUnknown,
		"rate_limited":      ErrRateLimited,
		"permission_denied": ErrPermissionDenied,
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
	if got := ErrorKind(errors.New("boom")); got != "internal_error" {
		t.Fatalf("unknown error kind = %q", got)
	}
}
